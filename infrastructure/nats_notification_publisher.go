package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const publishTimeout = 5 * time.Second

// MessagePublisher publishes raw payloads to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NotificationEnvelope wraps a notification for external consumers
type NotificationEnvelope struct {
	EventID       string                `json:"event_id"`
	EventType     string                `json:"event_type"`
	Timestamp     time.Time             `json:"timestamp"`
	SourceService string                `json:"source_service"`
	Payload       entities.Notification `json:"payload"`
}

// NATSNotificationPublisher mirrors member notifications onto NATS subjects
type NATSNotificationPublisher struct {
	publisher MessagePublisher
	now       func() time.Time
}

// NewNATSNotificationPublisher creates a publisher over publisher
func NewNATSNotificationPublisher(publisher MessagePublisher) *NATSNotificationPublisher {
	return &NATSNotificationPublisher{
		publisher: publisher,
		now:       time.Now,
	}
}

// SubjectFor returns the subject a notification kind is published on
func SubjectFor(kind entities.NotificationKind) string {
	return fmt.Sprintf("%s.%s", NotificationSubjectPrefix, kind)
}

// Subscribe registers the publisher for every notification event on bus
func (p *NATSNotificationPublisher) Subscribe(bus *events.Bus) {
	bus.SubscribeNotifications(p.handle)
}

func (p *NATSNotificationPublisher) handle(ctx context.Context, event events.Event) {
	notificationEvent, ok := event.(events.NotificationEvent)
	if !ok {
		return
	}

	if err := p.Publish(ctx, notificationEvent.Notification); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": notificationEvent.Notification.GuildID,
			"kind":     notificationEvent.Notification.Kind,
		}).Warn("Failed to publish notification to NATS")
	}
}

// Publish sends one notification wrapped in an envelope
func (p *NATSNotificationPublisher) Publish(ctx context.Context, notification entities.Notification) error {
	envelope := NotificationEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(events.TypeForNotification(notification.Kind)),
		Timestamp:     p.now().UTC(),
		SourceService: "rolekeeper",
		Payload:       notification,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal notification envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.publisher.Publish(ctx, SubjectFor(notification.Kind), data)
}

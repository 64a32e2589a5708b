package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessagePublisher struct {
	mock.Mock
}

func (m *mockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "rolekeeper.notifications.limit-reached", SubjectFor(entities.NotificationLimitReached))
	assert.Equal(t, "rolekeeper.notifications.verified", SubjectFor(entities.NotificationVerified))
}

func TestNATSNotificationPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	notification := entities.Notification{
		Kind:        entities.NotificationRoleGranted,
		GuildID:     1,
		RecipientID: 2,
		GuildName:   "Test Guild",
		RoleName:    "Gamer",
	}

	var captured []byte
	publisher := new(mockMessagePublisher)
	publisher.On("Publish", mock.Anything, "rolekeeper.notifications.role-granted", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).([]byte)
		}).
		Return(nil)

	p := NewNATSNotificationPublisher(publisher)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Publish(ctx, notification))
	publisher.AssertExpectations(t)

	var envelope NotificationEnvelope
	require.NoError(t, json.Unmarshal(captured, &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.Equal(t, string(events.EventTypeGameRoleGranted), envelope.EventType)
	assert.Equal(t, "rolekeeper", envelope.SourceService)
	assert.True(t, fixed.Equal(envelope.Timestamp))
	assert.Equal(t, notification, envelope.Payload)
}

func TestNATSNotificationPublisher_PublishError(t *testing.T) {
	publisher := new(mockMessagePublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("not connected to NATS JetStream"))

	p := NewNATSNotificationPublisher(publisher)
	err := p.Publish(context.Background(), entities.Notification{Kind: entities.NotificationVerified})
	assert.EqualError(t, err, "not connected to NATS JetStream")
}

func TestNATSNotificationPublisher_SubscribesToBus(t *testing.T) {
	bus := events.NewBus()

	published := make(chan string, 1)
	publisher := new(mockMessagePublisher)
	publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			published <- args.String(1)
		}).
		Return(nil)

	NewNATSNotificationPublisher(publisher).Subscribe(bus)
	NewBusNotifier(bus).Notify(context.Background(), entities.Notification{Kind: entities.NotificationUnverified})

	select {
	case subject := <-published:
		assert.Equal(t, "rolekeeper.notifications.unverified", subject)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not published")
	}
}

func TestBusNotifier_DetachesFromCallerContext(t *testing.T) {
	bus := events.NewBus()

	received := make(chan error, 1)
	bus.SubscribeNotifications(func(ctx context.Context, event events.Event) {
		received <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, NewBusNotifier(bus).Notify(ctx, entities.Notification{Kind: entities.NotificationVerified}))

	select {
	case err := <-received:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}

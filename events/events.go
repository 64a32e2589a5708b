package events

import (
	"context"
	"sync"

	"rolekeeper/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeMemberVerified    EventType = "member_verified"
	EventTypeMemberUnverified  EventType = "member_unverified"
	EventTypeGameRoleGranted   EventType = "game_role_granted"
	EventTypeGameRoleRevoked   EventType = "game_role_revoked"
	EventTypeSelectionLimitHit EventType = "selection_limit_hit"
	EventTypeMemberJoined      EventType = "member_joined"
)

// NotificationEventTypes lists every event type carrying a member notification
var NotificationEventTypes = []EventType{
	EventTypeMemberVerified,
	EventTypeMemberUnverified,
	EventTypeGameRoleGranted,
	EventTypeGameRoleRevoked,
	EventTypeSelectionLimitHit,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// NotificationEvent carries a notification request for a member
type NotificationEvent struct {
	Notification entities.Notification
}

func (e NotificationEvent) Type() EventType {
	return TypeForNotification(e.Notification.Kind)
}

// TypeForNotification maps a notification kind onto its event type
func TypeForNotification(kind entities.NotificationKind) EventType {
	switch kind {
	case entities.NotificationVerified:
		return EventTypeMemberVerified
	case entities.NotificationUnverified:
		return EventTypeMemberUnverified
	case entities.NotificationRoleGranted:
		return EventTypeGameRoleGranted
	case entities.NotificationRoleRevoked:
		return EventTypeGameRoleRevoked
	case entities.NotificationLimitReached:
		return EventTypeSelectionLimitHit
	}
	return EventType(kind)
}

// MemberJoinedEvent represents a new member arriving in a guild
type MemberJoinedEvent struct {
	GuildID   int64
	MemberID  int64
	AvatarURL string
}

func (e MemberJoinedEvent) Type() EventType {
	return EventTypeMemberJoined
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeNotifications adds handler for every notification event type
func (b *Bus) SubscribeNotifications(handler Handler) {
	for _, eventType := range NotificationEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// HandlerCount returns the number of handlers registered for eventType
func (b *Bus) HandlerCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// Emit publishes an event to all registered handlers without waiting for them
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

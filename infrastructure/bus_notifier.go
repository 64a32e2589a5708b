package infrastructure

import (
	"context"

	"rolekeeper/domain/entities"
	"rolekeeper/events"
)

// BusNotifier hands notifications to the in-process event bus. Delivery happens
// on the bus subscribers' goroutines, detached from the caller's context.
type BusNotifier struct {
	bus *events.Bus
}

// NewBusNotifier creates a notifier emitting onto bus
func NewBusNotifier(bus *events.Bus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

// Notify implements interfaces.Notifier
func (n *BusNotifier) Notify(_ context.Context, notification entities.Notification) error {
	n.bus.Emit(context.Background(), events.NotificationEvent{Notification: notification})
	return nil
}

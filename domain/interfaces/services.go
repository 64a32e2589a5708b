package interfaces

import (
	"context"

	"rolekeeper/domain/entities"
)

// ReactionRouter accepts normalized reaction events
type ReactionRouter interface {
	Route(ctx context.Context, event entities.ReactionEvent)
}

// EventSubmitter queues reaction events for ordered handling
type EventSubmitter interface {
	Submit(event entities.ReactionEvent) bool
}

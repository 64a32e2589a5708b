package services

import (
	"context"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// DefaultCallTimeout bounds every Role Mutator call made by the handlers
const DefaultCallTimeout = 5 * time.Second

// callContext derives the bounded context used for one platform call
func callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

// notifyBestEffort hands a notification to the notifier and swallows any failure.
// The role mutation that preceded it is never unwound.
func notifyBestEffort(ctx context.Context, notifier interfaces.Notifier, n entities.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id": n.GuildID,
			"user_id":  n.RecipientID,
			"kind":     n.Kind,
		}).Debug("Notification dropped")
	}
}

func containsRole(roleIDs []int64, roleID int64) bool {
	for _, id := range roleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

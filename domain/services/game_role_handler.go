package services

import (
	"context"
	"fmt"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// GameRoleHandler grants and revokes self-service game roles under the
// per-member selection limit
type GameRoleHandler struct {
	roles       interfaces.RoleMutator
	directory   interfaces.GuildDirectory
	notifier    interfaces.Notifier
	locks       *MemberLocker
	callTimeout time.Duration
}

// NewGameRoleHandler creates a game role handler
func NewGameRoleHandler(roles interfaces.RoleMutator, directory interfaces.GuildDirectory, notifier interfaces.Notifier, locks *MemberLocker, callTimeout time.Duration) *GameRoleHandler {
	if locks == nil {
		locks = NewMemberLocker()
	}
	return &GameRoleHandler{
		roles:       roles,
		directory:   directory,
		notifier:    notifier,
		locks:       locks,
		callTimeout: callTimeout,
	}
}

// Handle applies a tracked game role reaction
func (h *GameRoleHandler) Handle(ctx context.Context, event entities.ReactionEvent, cfg *entities.GameRoleConfig) (Outcome, error) {
	roleID, ok := cfg.RoleFor(event.Emoji)
	if !ok {
		return OutcomeNoop, nil
	}

	var (
		outcome Outcome
		err     error
	)
	switch event.Kind {
	case entities.ReactionAdded:
		outcome, err = h.grant(ctx, event, roleID, cfg)
	case entities.ReactionRemoved:
		outcome, err = h.revoke(ctx, event, roleID)
	default:
		return OutcomeNoop, nil
	}
	if err != nil {
		return outcome, err
	}

	switch outcome {
	case OutcomeGranted:
		h.notify(ctx, entities.NotificationRoleGranted, event, roleID, 0)
	case OutcomeRevoked:
		h.notify(ctx, entities.NotificationRoleRevoked, event, roleID, 0)
	case OutcomeRejected:
		h.notify(ctx, entities.NotificationLimitReached, event, roleID, cfg.MaxSelections)
	}

	return outcome, nil
}

// grant runs the count-compare-grant sequence while holding the member's lock,
// so two concurrent additions for one member cannot both pass the limit check
func (h *GameRoleHandler) grant(ctx context.Context, event entities.ReactionEvent, roleID int64, cfg *entities.GameRoleConfig) (Outcome, error) {
	unlock := h.locks.Lock(event.Key())
	defer unlock()

	rolesCtx, cancel := callContext(ctx, h.callTimeout)
	held, err := h.roles.MemberRoles(rolesCtx, event.GuildID, event.MemberID)
	cancel()
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to read member roles: %w", err)
	}

	if containsRole(held, roleID) {
		return OutcomeNoop, nil
	}

	fields := log.Fields{
		"guild_id": event.GuildID,
		"user_id":  event.MemberID,
		"role_id":  roleID,
		"emoji":    event.Emoji,
	}

	if count := cfg.CountHeld(held); count >= cfg.MaxSelections {
		retractCtx, cancel := callContext(ctx, h.callTimeout)
		defer cancel()
		if err := h.roles.RemoveReaction(retractCtx, event.ChannelID, event.MessageID, event.Emoji, event.MemberID); err != nil {
			log.WithError(err).WithFields(fields).Warn("Failed to retract reaction over selection limit")
		}
		log.WithFields(fields).WithFields(log.Fields{
			"held":  count,
			"limit": cfg.MaxSelections,
		}).Info("Game role selection limit reached")
		return OutcomeRejected, nil
	}

	addCtx, cancel := callContext(ctx, h.callTimeout)
	defer cancel()
	if err := h.roles.AddRole(addCtx, event.GuildID, event.MemberID, roleID, "Game role selected through reaction"); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to add game role: %w", err)
	}

	log.WithFields(fields).Info("Game role added")
	return OutcomeGranted, nil
}

// revoke removes the role if held
func (h *GameRoleHandler) revoke(ctx context.Context, event entities.ReactionEvent, roleID int64) (Outcome, error) {
	checkCtx, cancel := callContext(ctx, h.callTimeout)
	has, err := h.roles.HasRole(checkCtx, event.GuildID, event.MemberID, roleID)
	cancel()
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to check game role: %w", err)
	}
	if !has {
		return OutcomeNoop, nil
	}

	removeCtx, cancel := callContext(ctx, h.callTimeout)
	defer cancel()
	if err := h.roles.RemoveRole(removeCtx, event.GuildID, event.MemberID, roleID, "Game role deselected through reaction removal"); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to remove game role: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id": event.GuildID,
		"user_id":  event.MemberID,
		"role_id":  roleID,
		"emoji":    event.Emoji,
	}).Info("Game role removed")
	return OutcomeRevoked, nil
}

func (h *GameRoleHandler) notify(ctx context.Context, kind entities.NotificationKind, event entities.ReactionEvent, roleID int64, limit int) {
	namesCtx, cancel := callContext(ctx, h.callTimeout)
	guildName := h.directory.GuildName(namesCtx, event.GuildID)
	roleName := h.directory.RoleName(namesCtx, event.GuildID, roleID)
	cancel()

	notifyBestEffort(ctx, h.notifier, entities.Notification{
		Kind:        kind,
		GuildID:     event.GuildID,
		RecipientID: event.MemberID,
		GuildName:   guildName,
		RoleName:    roleName,
		Limit:       limit,
	})
}

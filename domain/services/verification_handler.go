package services

import (
	"context"
	"fmt"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// VerificationHandler grants or revokes the single verified role of a guild
type VerificationHandler struct {
	roles       interfaces.RoleMutator
	directory   interfaces.GuildDirectory
	notifier    interfaces.Notifier
	callTimeout time.Duration
}

// NewVerificationHandler creates a verification handler
func NewVerificationHandler(roles interfaces.RoleMutator, directory interfaces.GuildDirectory, notifier interfaces.Notifier, callTimeout time.Duration) *VerificationHandler {
	return &VerificationHandler{
		roles:       roles,
		directory:   directory,
		notifier:    notifier,
		callTimeout: callTimeout,
	}
}

// Handle applies a tracked verification reaction. Role Mutator failures are
// returned with OutcomeFailed for the caller to log; they are never fatal.
func (h *VerificationHandler) Handle(ctx context.Context, event entities.ReactionEvent, cfg *entities.VerificationConfig) (Outcome, error) {
	if !cfg.HasRole() {
		log.WithField("guild_id", event.GuildID).Warn("Verification enabled without a role, ignoring reaction")
		return OutcomeNoop, nil
	}
	roleID := *cfg.RoleID

	outcome, err := h.mutate(ctx, event, roleID)
	if err != nil || !outcome.Mutated() {
		return outcome, err
	}

	kind := entities.NotificationVerified
	if outcome == OutcomeRevoked {
		kind = entities.NotificationUnverified
	}
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
	})

	return outcome, nil
}

// mutate performs the idempotent grant or revoke
func (h *VerificationHandler) mutate(ctx context.Context, event entities.ReactionEvent, roleID int64) (Outcome, error) {
	checkCtx, cancel := callContext(ctx, h.callTimeout)
	has, err := h.roles.HasRole(checkCtx, event.GuildID, event.MemberID, roleID)
	cancel()
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to check verified role: %w", err)
	}

	switch event.Kind {
	case entities.ReactionAdded:
		if has {
			return OutcomeNoop, nil
		}
		addCtx, cancel := callContext(ctx, h.callTimeout)
		defer cancel()
		if err := h.roles.AddRole(addCtx, event.GuildID, event.MemberID, roleID, "Verified through reaction role"); err != nil {
			return OutcomeFailed, fmt.Errorf("failed to add verified role: %w", err)
		}
		log.WithFields(log.Fields{
			"guild_id": event.GuildID,
			"user_id":  event.MemberID,
			"role_id":  roleID,
		}).Info("Verified member")
		return OutcomeGranted, nil

	case entities.ReactionRemoved:
		if !has {
			return OutcomeNoop, nil
		}
		removeCtx, cancel := callContext(ctx, h.callTimeout)
		defer cancel()
		if err := h.roles.RemoveRole(removeCtx, event.GuildID, event.MemberID, roleID, "Verification reaction removed"); err != nil {
			return OutcomeFailed, fmt.Errorf("failed to remove verified role: %w", err)
		}
		log.WithFields(log.Fields{
			"guild_id": event.GuildID,
			"user_id":  event.MemberID,
			"role_id":  roleID,
		}).Info("Removed verification from member")
		return OutcomeRevoked, nil
	}

	return OutcomeNoop, nil
}

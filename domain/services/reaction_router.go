package services

import (
	"context"
	"sync/atomic"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RouteResult records what each subsystem did with one event.
// A nil outcome means the subsystem did not match the event.
type RouteResult struct {
	Verification *Outcome
	GameRole     *Outcome
}

// Matched reports whether any subsystem handled the event
func (r RouteResult) Matched() bool {
	return r.Verification != nil || r.GameRole != nil
}

// Router sends reaction events to the verification and game role handlers
type Router struct {
	store        *ConfigStore
	directory    interfaces.GuildDirectory
	verification *VerificationHandler
	gameRoles    *GameRoleHandler
	callTimeout  time.Duration
	selfID       atomic.Int64
}

// NewRouter creates a reaction router
func NewRouter(store *ConfigStore, directory interfaces.GuildDirectory, verification *VerificationHandler, gameRoles *GameRoleHandler, callTimeout time.Duration) *Router {
	return &Router{
		store:        store,
		directory:    directory,
		verification: verification,
		gameRoles:    gameRoles,
		callTimeout:  callTimeout,
	}
}

// SetSelfID records the bot's own user ID so its reactions are ignored
func (r *Router) SetSelfID(id int64) {
	r.selfID.Store(id)
}

// Route handles an event and logs the result
func (r *Router) Route(ctx context.Context, event entities.ReactionEvent) {
	r.Handle(ctx, event)
}

// Handle matches an event against both subsystems and dispatches it.
// Both subsystems may fire for one event if they share a message and emoji.
func (r *Router) Handle(ctx context.Context, event entities.ReactionEvent) RouteResult {
	var result RouteResult

	if self := r.selfID.Load(); self != 0 && event.MemberID == self {
		return result
	}

	verification, gameRoles := r.store.Snapshot(event.GuildID)
	matchVerification := verification.Tracks(event.MessageID, event.Emoji)
	matchGameRoles := gameRoles.Tracks(event.MessageID, event.Emoji)
	if !matchVerification && !matchGameRoles {
		return result
	}

	fields := log.Fields{
		"guild_id":   event.GuildID,
		"user_id":    event.MemberID,
		"message_id": event.MessageID,
		"emoji":      event.Emoji,
		"kind":       event.Kind,
	}

	lookupCtx, cancel := callContext(ctx, r.callTimeout)
	exists, err := r.directory.MemberExists(lookupCtx, event.GuildID, event.MemberID)
	cancel()
	if err != nil {
		log.WithError(err).WithFields(fields).Warn("Failed to resolve member, dropping reaction")
		return result
	}
	if !exists {
		log.WithFields(fields).Debug("Member no longer in guild, dropping reaction")
		return result
	}

	if matchVerification {
		outcome, err := r.verification.Handle(ctx, event, verification)
		logOutcome("verification", outcome, err, fields)
		result.Verification = &outcome
	}

	if matchGameRoles {
		outcome, err := r.gameRoles.Handle(ctx, event, gameRoles)
		logOutcome("game_roles", outcome, err, fields)
		result.GameRole = &outcome
	}

	return result
}

func logOutcome(subsystem string, outcome Outcome, err error, fields log.Fields) {
	entry := log.WithFields(fields).WithFields(log.Fields{
		"subsystem": subsystem,
		"outcome":   outcome,
	})
	if err != nil {
		entry.WithError(err).Error("Reaction role update failed")
		return
	}
	entry.Debug("Reaction routed")
}

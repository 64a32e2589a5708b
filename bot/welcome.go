package bot

import (
	"context"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/events"

	log "github.com/sirupsen/logrus"
)

// verificationSource reads the verification config used to build greetings
type verificationSource interface {
	GetVerificationConfig(guildID int64) *entities.VerificationConfig
}

// guildNamer resolves guild display names
type guildNamer interface {
	GuildName(ctx context.Context, guildID int64) string
}

// WelcomeGreeter posts a greeting when a member joins a guild that has a
// welcome channel configured
type WelcomeGreeter struct {
	configs verificationSource
	names   guildNamer
	sender  embedSender
	timeout time.Duration
}

// NewWelcomeGreeter creates a welcome greeter
func NewWelcomeGreeter(configs verificationSource, names guildNamer, sender embedSender, timeout time.Duration) *WelcomeGreeter {
	return &WelcomeGreeter{
		configs: configs,
		names:   names,
		sender:  sender,
		timeout: timeout,
	}
}

// Subscribe registers the greeter for member joins on bus
func (g *WelcomeGreeter) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeMemberJoined, g.handle)
}

func (g *WelcomeGreeter) handle(ctx context.Context, event events.Event) {
	joined, ok := event.(events.MemberJoinedEvent)
	if !ok {
		return
	}

	cfg := g.configs.GetVerificationConfig(joined.GuildID)
	if !cfg.HasWelcomeChannel() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var verifyChannelID int64
	if cfg.Enabled && cfg.TrackedChannelID != nil {
		verifyChannelID = *cfg.TrackedChannelID
	}

	embed := WelcomeEmbed(joined.MemberID, g.names.GuildName(ctx, joined.GuildID), verifyChannelID, joined.AvatarURL)
	if err := g.sender.SendChannelEmbed(ctx, *cfg.WelcomeChannelID, embed); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild_id":   joined.GuildID,
			"member_id":  joined.MemberID,
			"channel_id": *cfg.WelcomeChannelID,
		}).Error("Error sending welcome message")
	}
}

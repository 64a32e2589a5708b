package bot

import (
	"context"
	"fmt"

	"rolekeeper/bot/common"
	"rolekeeper/bot/features/gameroles"
	"rolekeeper/bot/features/verification"
	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"
	"rolekeeper/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Intents the bot needs: guild metadata, member joins, reactions and DMs
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages

// selfAware is told the bot's own user ID once the gateway is ready
type selfAware interface {
	SetSelfID(id int64)
}

// Config holds bot configuration
type Config struct {
	Token string
}

// Bot connects the Discord gateway to the reaction pipeline and admin commands
type Bot struct {
	session      *discordgo.Session
	router       selfAware
	submitter    interfaces.EventSubmitter
	eventBus     *events.Bus
	verification *verification.Feature
	gameRoles    *gameroles.Feature
}

// NewSession creates a Discord session with the intents the bot needs. The
// connection is not opened until Start.
func NewSession(config Config) (*discordgo.Session, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = Intents
	dg.StateEnabled = true
	return dg, nil
}

// New creates a bot on session and registers its gateway handlers
func New(session *discordgo.Session, router selfAware, submitter interfaces.EventSubmitter, verificationFeature *verification.Feature, gameRolesFeature *gameroles.Feature, eventBus *events.Bus) *Bot {
	bot := &Bot{
		session:      session,
		router:       router,
		submitter:    submitter,
		eventBus:     eventBus,
		verification: verificationFeature,
		gameRoles:    gameRolesFeature,
	}

	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleReactionAdd)
	session.AddHandler(bot.handleReactionRemove)
	session.AddHandler(bot.handleMemberJoin)
	session.AddHandler(bot.handleCommands)

	return bot
}

// Start opens the gateway connection and registers slash commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return fmt.Errorf("error registering commands: %w", err)
	}

	return nil
}

// Close closes the gateway connection
func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	selfID, err := common.ParseDiscordID(r.User.ID)
	if err != nil {
		log.Errorf("Failed to parse bot user ID %q: %v", r.User.ID, err)
		return
	}
	b.router.SetSelfID(selfID)

	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Discord gateway ready")
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.submitReaction(entities.ReactionAdded, r.MessageReaction)
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.submitReaction(entities.ReactionRemoved, r.MessageReaction)
}

func (b *Bot) submitReaction(kind entities.ReactionKind, r *discordgo.MessageReaction) {
	event, ok := reactionEventFrom(kind, r)
	if !ok {
		return
	}

	if !b.submitter.Submit(event) {
		log.WithFields(log.Fields{
			"guild_id":   event.GuildID,
			"member_id":  event.MemberID,
			"message_id": event.MessageID,
			"emoji":      event.Emoji,
		}).Warn("Dropped reaction event, dispatcher not running")
	}
}

// reactionEventFrom normalizes a gateway reaction. Reactions outside guilds
// and payloads with unparseable IDs are dropped.
func reactionEventFrom(kind entities.ReactionKind, r *discordgo.MessageReaction) (entities.ReactionEvent, bool) {
	if r == nil || r.GuildID == "" {
		return entities.ReactionEvent{}, false
	}

	guildID, err := common.ParseDiscordID(r.GuildID)
	if err != nil {
		return entities.ReactionEvent{}, false
	}
	channelID, err := common.ParseDiscordID(r.ChannelID)
	if err != nil {
		return entities.ReactionEvent{}, false
	}
	messageID, err := common.ParseDiscordID(r.MessageID)
	if err != nil {
		return entities.ReactionEvent{}, false
	}
	memberID, err := common.ParseDiscordID(r.UserID)
	if err != nil {
		return entities.ReactionEvent{}, false
	}

	return entities.ReactionEvent{
		Kind:      kind,
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     common.ReactionEmoji(r.Emoji),
		MemberID:  memberID,
	}, true
}

func (b *Bot) handleMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}

	guildID, err := common.ParseDiscordID(m.GuildID)
	if err != nil {
		return
	}
	memberID, err := common.ParseDiscordID(m.User.ID)
	if err != nil {
		return
	}

	log.WithFields(log.Fields{
		"guild_id":  guildID,
		"member_id": memberID,
	}).Info("New member joined")

	b.eventBus.Emit(context.Background(), events.MemberJoinedEvent{
		GuildID:   guildID,
		MemberID:  memberID,
		AvatarURL: m.User.AvatarURL(""),
	})
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" || i.Member == nil {
		common.RespondWithError(s, i, "This command can only be used in a server")
		return
	}

	switch i.ApplicationCommandData().Name {
	case common.CommandVerification:
		b.verification.HandleCommand(s, i)
	case common.CommandGameRoles:
		b.gameRoles.HandleCommand(s, i)
	}
}

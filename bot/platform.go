package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rolekeeper/bot/common"
	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
)

// discordAPI is the subset of *discordgo.Session used for role and message calls
type discordAPI interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

// DiscordPlatform implements the role mutator, guild directory and prompt poster
// over the Discord REST API. Calls are bounded by the caller's context and
// guarded by a circuit breaker that trips on server-side failures only.
type DiscordPlatform struct {
	api     discordAPI
	state   *discordgo.State
	breaker *gobreaker.CircuitBreaker[any]
}

// NewDiscordPlatform creates a platform adapter. state may be nil, in which
// case names are always fetched over REST.
func NewDiscordPlatform(api discordAPI, state *discordgo.State) *DiscordPlatform {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "discord-rest",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(log.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &DiscordPlatform{
		api:     api,
		state:   state,
		breaker: breaker,
	}
}

// call runs fn under the circuit breaker
func (p *DiscordPlatform) call(fn func() error) error {
	_, err := p.breaker.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", interfaces.ErrCircuitOpen, err)
	}
	return err
}

// MemberRoles reads the member's roles fresh from the API
func (p *DiscordPlatform) MemberRoles(ctx context.Context, guildID, memberID int64) ([]int64, error) {
	var member *discordgo.Member
	err := p.call(func() error {
		var err error
		member, err = p.api.GuildMember(common.FormatDiscordID(guildID), common.FormatDiscordID(memberID), discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, translateError(err)
	}

	roles := make([]int64, 0, len(member.Roles))
	for _, roleID := range member.Roles {
		id, err := strconv.ParseInt(roleID, 10, 64)
		if err != nil {
			continue
		}
		roles = append(roles, id)
	}
	return roles, nil
}

// HasRole reports whether the member currently holds roleID
func (p *DiscordPlatform) HasRole(ctx context.Context, guildID, memberID, roleID int64) (bool, error) {
	roles, err := p.MemberRoles(ctx, guildID, memberID)
	if err != nil {
		return false, err
	}
	for _, id := range roles {
		if id == roleID {
			return true, nil
		}
	}
	return false, nil
}

// AddRole grants roleID to the member
func (p *DiscordPlatform) AddRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	err := p.call(func() error {
		return p.api.GuildMemberRoleAdd(
			common.FormatDiscordID(guildID),
			common.FormatDiscordID(memberID),
			common.FormatDiscordID(roleID),
			discordgo.WithContext(ctx),
			discordgo.WithAuditLogReason(reason),
		)
	})
	return translateError(err)
}

// RemoveRole revokes roleID from the member
func (p *DiscordPlatform) RemoveRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	err := p.call(func() error {
		return p.api.GuildMemberRoleRemove(
			common.FormatDiscordID(guildID),
			common.FormatDiscordID(memberID),
			common.FormatDiscordID(roleID),
			discordgo.WithContext(ctx),
			discordgo.WithAuditLogReason(reason),
		)
	})
	return translateError(err)
}

// RemoveReaction retracts the member's reaction from a message
func (p *DiscordPlatform) RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, memberID int64) error {
	err := p.call(func() error {
		return p.api.MessageReactionRemove(
			common.FormatDiscordID(channelID),
			common.FormatDiscordID(messageID),
			emoji,
			common.FormatDiscordID(memberID),
			discordgo.WithContext(ctx),
		)
	})
	return translateError(err)
}

// MemberExists reports whether the member is still part of the guild
func (p *DiscordPlatform) MemberExists(ctx context.Context, guildID, memberID int64) (bool, error) {
	_, err := p.MemberRoles(ctx, guildID, memberID)
	if errors.Is(err, interfaces.ErrMemberNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GuildName returns the guild's name from the state cache, falling back to REST
func (p *DiscordPlatform) GuildName(ctx context.Context, guildID int64) string {
	id := common.FormatDiscordID(guildID)
	if p.state != nil {
		if guild, err := p.state.Guild(id); err == nil && guild.Name != "" {
			return guild.Name
		}
	}
	guild, err := p.api.Guild(id, discordgo.WithContext(ctx))
	if err != nil || guild == nil {
		return "this server"
	}
	return guild.Name
}

// RoleName returns the role's name from the state cache, falling back to REST
func (p *DiscordPlatform) RoleName(ctx context.Context, guildID, roleID int64) string {
	gid := common.FormatDiscordID(guildID)
	rid := common.FormatDiscordID(roleID)
	if p.state != nil {
		if role, err := p.state.Role(gid, rid); err == nil {
			return role.Name
		}
	}
	roles, err := p.api.GuildRoles(gid, discordgo.WithContext(ctx))
	if err == nil {
		for _, role := range roles {
			if role.ID == rid {
				return role.Name
			}
		}
	}
	return "Unknown role"
}

// RoleExists looks the role up in the state cache, then over REST
func (p *DiscordPlatform) RoleExists(ctx context.Context, guildID, roleID int64) (bool, error) {
	gid := common.FormatDiscordID(guildID)
	rid := common.FormatDiscordID(roleID)
	if p.state != nil {
		if _, err := p.state.Role(gid, rid); err == nil {
			return true, nil
		}
	}

	var roles []*discordgo.Role
	err := p.call(func() error {
		var err error
		roles, err = p.api.GuildRoles(gid, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return false, translateError(err)
	}
	for _, role := range roles {
		if role.ID == rid {
			return true, nil
		}
	}
	return false, nil
}

// PostVerificationPrompt posts the verification embed and returns its message ID
func (p *DiscordPlatform) PostVerificationPrompt(ctx context.Context, channelID int64, cfg *entities.VerificationConfig) (int64, error) {
	roleName := "verified"
	if cfg.HasRole() {
		roleName = p.RoleName(ctx, cfg.GuildID, *cfg.RoleID)
	}
	return p.sendEmbed(ctx, channelID, VerificationPromptEmbed(cfg, roleName))
}

// PostGameRolePrompt posts the game role listing and returns its message ID
func (p *DiscordPlatform) PostGameRolePrompt(ctx context.Context, channelID int64, cfg *entities.GameRoleConfig, roleNames map[string]string) (int64, error) {
	return p.sendEmbed(ctx, channelID, GameRolePromptEmbed(cfg, roleNames))
}

// AddReaction adds the bot's own reaction to a message
func (p *DiscordPlatform) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	err := p.call(func() error {
		return p.api.MessageReactionAdd(
			common.FormatDiscordID(channelID),
			common.FormatDiscordID(messageID),
			emoji,
			discordgo.WithContext(ctx),
		)
	})
	return translateError(err)
}

func (p *DiscordPlatform) sendEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) (int64, error) {
	var msg *discordgo.Message
	err := p.call(func() error {
		var err error
		msg, err = p.api.ChannelMessageSendEmbed(common.FormatDiscordID(channelID), embed, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return 0, translateError(err)
	}

	messageID, err := strconv.ParseInt(msg.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid message ID %q: %w", msg.ID, err)
	}
	return messageID, nil
}

// translateError maps Discord API errors onto domain sentinels
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember:
			return fmt.Errorf("%w: %v", interfaces.ErrMemberNotFound, err)
		case discordgo.ErrCodeUnknownRole:
			return fmt.Errorf("%w: %v", interfaces.ErrRoleNotFound, err)
		}
	}
	return err
}

// isClientError reports whether err is a 4xx response, which says nothing
// about the health of the API
func isClientError(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) || restErr.Response == nil {
		return false
	}
	code := restErr.Response.StatusCode
	return code >= http.StatusBadRequest && code < http.StatusInternalServerError && code != http.StatusTooManyRequests
}

// SendDirectEmbed opens a DM channel with the user and sends embed to it
func (p *DiscordPlatform) SendDirectEmbed(ctx context.Context, userID int64, embed *discordgo.MessageEmbed) error {
	var channel *discordgo.Channel
	err := p.call(func() error {
		var err error
		channel, err = p.api.UserChannelCreate(common.FormatDiscordID(userID), discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to open DM channel: %w", translateError(err))
	}

	channelID, err := strconv.ParseInt(channel.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid DM channel ID %q: %w", channel.ID, err)
	}

	_, err = p.sendEmbed(ctx, channelID, embed)
	return err
}

// SendChannelEmbed posts embed to a guild channel
func (p *DiscordPlatform) SendChannelEmbed(ctx context.Context, channelID int64, embed *discordgo.MessageEmbed) error {
	_, err := p.sendEmbed(ctx, channelID, embed)
	return err
}

package gameroles

import (
	"fmt"
	"sort"
	"strings"

	"rolekeeper/bot/common"
	"rolekeeper/domain/entities"
	"rolekeeper/domain/services"

	"github.com/bwmarrin/discordgo"
)

// SetupCompleteEmbed confirms a successful /gameroles setup
func SetupCompleteEmbed(cfg *entities.GameRoleConfig) *discordgo.MessageEmbed {
	channel := "Not set"
	if cfg.TrackedChannelID != nil {
		channel = common.GetChannelMention(*cfg.TrackedChannelID)
	}

	return &discordgo.MessageEmbed{
		Title:       "✅ Game Role Setup Complete!",
		Description: "Game role selection has been set up in " + channel,
		Color:       common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Roles Available", Value: fmt.Sprintf("%d", len(cfg.EmojiToRole)), Inline: true},
			{Name: "Max Selections", Value: fmt.Sprintf("%d", cfg.MaxSelections), Inline: true},
		},
	}
}

// ListEmbed lists the emoji to role mapping. An empty mapping lists suggestions.
func ListEmbed(cfg *entities.GameRoleConfig) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎮 Configured Game Roles",
		Color: common.ColorGame,
	}

	if len(cfg.EmojiToRole) == 0 {
		embed.Description = "No game roles configured yet. Add one with `/gameroles add`."
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Suggestions", Value: suggestions(), Inline: false},
		}
		return embed
	}

	var lines strings.Builder
	for _, emoji := range services.SortedEmojis(cfg) {
		fmt.Fprintf(&lines, "%s → %s\n", emoji, common.GetRoleMention(cfg.EmojiToRole[emoji]))
	}
	embed.Description = strings.TrimSuffix(lines.String(), "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%d roles | max %d per member", len(cfg.EmojiToRole), cfg.MaxSelections),
	}
	return embed
}

// StatusEmbed summarizes the game role config of a guild
func StatusEmbed(cfg *entities.GameRoleConfig) *discordgo.MessageEmbed {
	status := "🔴 Disabled"
	color := common.ColorDanger
	if cfg.Enabled {
		status = "🟢 Enabled"
		color = common.ColorSuccess
	}

	channel := "Not set"
	if cfg.TrackedChannelID != nil {
		channel = common.GetChannelMention(*cfg.TrackedChannelID)
	}

	return &discordgo.MessageEmbed{
		Title: "🎮 Game Role System Status",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: status, Inline: true},
			{Name: "Channel", Value: channel, Inline: true},
			{Name: "Roles Configured", Value: fmt.Sprintf("%d", len(cfg.EmojiToRole)), Inline: true},
			{Name: "Max Selections", Value: fmt.Sprintf("%d", cfg.MaxSelections), Inline: true},
		},
	}
}

func suggestions() string {
	emojis := make([]string, 0, len(entities.DefaultGameRoles))
	for emoji := range entities.DefaultGameRoles {
		emojis = append(emojis, emoji)
	}
	sort.Strings(emojis)

	var b strings.Builder
	for _, emoji := range emojis {
		fmt.Fprintf(&b, "%s %s\n", emoji, entities.DefaultGameRoles[emoji])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

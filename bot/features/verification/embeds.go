package verification

import (
	"rolekeeper/bot/common"
	"rolekeeper/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// SetupCompleteEmbed confirms a successful /verification setup
func SetupCompleteEmbed(cfg *entities.VerificationConfig) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "✅ Verification Setup Complete!",
		Description: "Verification system has been set up in " + channelValue(cfg.TrackedChannelID),
		Color:       common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Verification Role", Value: roleValue(cfg.RoleID), Inline: true},
			{Name: "Verification Channel", Value: channelValue(cfg.TrackedChannelID), Inline: true},
			{Name: "Verification Emoji", Value: cfg.Emoji, Inline: true},
		},
	}
}

// StatusEmbed summarizes the verification config of a guild
func StatusEmbed(cfg *entities.VerificationConfig) *discordgo.MessageEmbed {
	status := "🔴 Disabled"
	color := common.ColorDanger
	if cfg.Enabled {
		status = "🟢 Enabled"
		color = common.ColorSuccess
	}

	return &discordgo.MessageEmbed{
		Title: "🔐 Verification System Status",
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: status, Inline: true},
			{Name: "Role", Value: roleValue(cfg.RoleID), Inline: true},
			{Name: "Channel", Value: channelValue(cfg.TrackedChannelID), Inline: true},
			{Name: "Emoji", Value: cfg.Emoji, Inline: true},
			{Name: "Welcome Channel", Value: channelValue(cfg.WelcomeChannelID), Inline: true},
		},
	}
}

func roleValue(id *int64) string {
	if id == nil {
		return "Not set"
	}
	return common.GetRoleMention(*id)
}

func channelValue(id *int64) string {
	if id == nil {
		return "Not set"
	}
	return common.GetChannelMention(*id)
}

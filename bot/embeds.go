package bot

import (
	"fmt"
	"strings"

	"rolekeeper/bot/common"
	"rolekeeper/domain/entities"
	"rolekeeper/domain/services"

	"github.com/bwmarrin/discordgo"
)

const welcomeMessage = "Welcome %s to %s! Please check the verification channel to get started."

// VerificationPromptEmbed builds the message members react to for verification
func VerificationPromptEmbed(cfg *entities.VerificationConfig, roleName string) *discordgo.MessageEmbed {
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = entities.DefaultVerifyPrompt
	}

	return &discordgo.MessageEmbed{
		Title:       "🔐 Server Verification",
		Description: prompt,
		Color:       common.ColorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Instructions",
				Value:  fmt.Sprintf("React with %s below to get the **%s** role and access the server!", cfg.Emoji, roleName),
				Inline: false,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Verification System | One click to join!",
		},
	}
}

// GameRolePromptEmbed builds the selector listing. roleNames is keyed by emoji.
func GameRolePromptEmbed(cfg *entities.GameRoleConfig, roleNames map[string]string) *discordgo.MessageEmbed {
	var lines strings.Builder
	for _, emoji := range services.SortedEmojis(cfg) {
		name, ok := roleNames[emoji]
		if !ok {
			name = common.GetRoleMention(cfg.EmojiToRole[emoji])
		}
		fmt.Fprintf(&lines, "%s - **%s**\n", emoji, name)
	}

	return &discordgo.MessageEmbed{
		Title:       "🎮 Choose Your Game Roles!",
		Description: "React with the games you play to get the corresponding roles!",
		Color:       common.ColorGame,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Available Game Roles",
				Value:  strings.TrimSuffix(lines.String(), "\n"),
				Inline: false,
			},
			{
				Name:   "Instructions",
				Value:  fmt.Sprintf("Click a reaction to get the role, click it again to remove it. Maximum %d selections allowed.", cfg.MaxSelections),
				Inline: false,
			},
		},
	}
}

// NotificationEmbed renders a member notification as a direct message
func NotificationEmbed(n entities.Notification) *discordgo.MessageEmbed {
	switch n.Kind {
	case entities.NotificationVerified:
		return &discordgo.MessageEmbed{
			Title:       "✅ Verification Successful!",
			Description: fmt.Sprintf("You have been verified in **%s**! You now have access to the server.", n.GuildName),
			Color:       common.ColorSuccess,
		}
	case entities.NotificationUnverified:
		return &discordgo.MessageEmbed{
			Title:       "⚠️ Verification Removed",
			Description: fmt.Sprintf("Your verification in **%s** has been removed. React again to regain access.", n.GuildName),
			Color:       common.ColorWarning,
		}
	case entities.NotificationRoleGranted:
		return &discordgo.MessageEmbed{
			Title:       "🎮 Game Role Added!",
			Description: fmt.Sprintf("You now have the **%s** role in **%s**!", n.RoleName, n.GuildName),
			Color:       common.ColorSuccess,
		}
	case entities.NotificationRoleRevoked:
		return &discordgo.MessageEmbed{
			Title:       "🎮 Game Role Removed",
			Description: fmt.Sprintf("The **%s** role has been removed from your profile in **%s**.", n.RoleName, n.GuildName),
			Color:       common.ColorWarning,
		}
	case entities.NotificationLimitReached:
		return &discordgo.MessageEmbed{
			Title: "⚠️ Selection Limit Reached",
			Description: fmt.Sprintf("You can only have %d game roles maximum in **%s**!\nRemove some roles first before adding new ones.",
				n.Limit, n.GuildName),
			Color: common.ColorWarning,
		}
	}
	return nil
}

// WelcomeEmbed greets a new member. verifyChannelID is 0 when verification
// is not active.
func WelcomeEmbed(memberID int64, guildName string, verifyChannelID int64, avatarURL string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "👋 Welcome!",
		Description: fmt.Sprintf(welcomeMessage, common.GetUserMention(memberID), guildName),
		Color:       common.ColorSuccess,
	}

	if verifyChannelID > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "🔐 Verification Required",
			Value:  fmt.Sprintf("Please head to %s to verify and gain access to the server!", common.GetChannelMention(verifyChannelID)),
			Inline: false,
		})
	}

	if avatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: avatarURL}
	}

	return embed
}

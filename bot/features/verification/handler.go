package verification

import (
	"context"

	"rolekeeper/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleSetup handles /verification setup
func (f *Feature) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	guildID, err := common.ParseDiscordID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to parse guild ID"), false)
		return
	}

	roleID, ok := common.SnowflakeOption(options, "role")
	if !ok {
		common.RespondWithError(s, i, "Please choose the role to grant on verification")
		return
	}

	channelID, ok := common.SnowflakeOption(options, "channel")
	if !ok {
		channelID, err = common.ParseDiscordID(i.ChannelID)
		if err != nil {
			common.HandleError(s, i, common.NewSystemError(err, "Failed to parse channel ID"), false)
			return
		}
	}

	// Posting the prompt and priming the reaction can exceed the 3s response window
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring verification setup response: %v", err)
		return
	}

	if _, err := f.setup.SetupVerification(context.Background(), guildID, roleID, channelID); err != nil {
		botErr := common.NewSystemError(err, "Failed to set up verification")
		botErr.UserMessage = "Failed to post the verification message. Check that I can send messages and add reactions in that channel."
		botErr.Context = log.Fields{"role_id": roleID, "channel_id": channelID}
		common.HandleError(s, i, botErr, true)
		return
	}

	cfg := f.setup.VerificationStatus(guildID)
	if _, err := common.FollowUpWithEmbed(s, i, SetupCompleteEmbed(cfg), true); err != nil {
		log.Errorf("Error sending verification setup confirmation: %v", err)
	}
}

// handleDisable handles /verification disable
func (f *Feature) handleDisable(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := common.ParseDiscordID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to parse guild ID"), false)
		return
	}

	f.setup.DisableVerification(guildID)

	if err := common.RespondWithSuccess(s, i, "Verification system has been disabled", true); err != nil {
		log.Errorf("Error responding to verification disable: %v", err)
	}
}

// handleStatus handles /verification status
func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, err := common.ParseDiscordID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to parse guild ID"), false)
		return
	}

	cfg := f.setup.VerificationStatus(guildID)
	if err := common.RespondWithEmbed(s, i, StatusEmbed(cfg), true); err != nil {
		log.Errorf("Error responding to verification status: %v", err)
	}
}

// handleWelcome handles /verification welcome. Omitting the channel turns greetings off.
func (f *Feature) handleWelcome(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	guildID, err := common.ParseDiscordID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to parse guild ID"), false)
		return
	}

	channelID, _ := common.SnowflakeOption(options, "channel")
	f.setup.SetWelcomeChannel(guildID, channelID)

	message := "Welcome messages have been turned off"
	if channelID > 0 {
		message = "Welcome messages will be posted in " + common.GetChannelMention(channelID)
	}
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to welcome channel update: %v", err)
	}
}

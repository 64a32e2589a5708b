package gameroles

import (
	"context"
	"errors"
	"fmt"

	"rolekeeper/bot/common"
	"rolekeeper/domain/services"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleSetup handles /gameroles setup
func (f *Feature) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, options []*discordgo.ApplicationCommandInteractionDataOption) {
	channelID, ok := common.SnowflakeOption(options, "channel")
	if !ok {
		var err error
		channelID, err = common.ParseDiscordID(i.ChannelID)
		if err != nil {
			common.HandleError(s, i, common.NewSystemError(err, "Failed to parse channel ID"), false)
			return
		}
	}

	if len(f.setup.GameRoleStatus(guildID).EmojiToRole) == 0 {
		common.HandleError(s, i, common.NewUserError(
			"No game roles configured. Use `/gameroles add` first.",
			"Game role setup without mappings",
		), false)
		return
	}

	// One reaction per mapped emoji is added before we can answer
	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Error deferring game role setup response: %v", err)
		return
	}

	if _, err := f.setup.SetupGameRoles(context.Background(), guildID, channelID); err != nil {
		if errors.Is(err, services.ErrNoGameRoles) {
			common.FollowUpWithError(s, i, "No game roles configured. Use `/gameroles add` first.")
			return
		}
		botErr := common.NewSystemError(err, "Failed to set up game roles")
		botErr.UserMessage = "Failed to post the game role message. Check that I can send messages and add reactions in that channel."
		botErr.Context = log.Fields{"channel_id": channelID}
		common.HandleError(s, i, botErr, true)
		return
	}

	cfg := f.setup.GameRoleStatus(guildID)
	if _, err := common.FollowUpWithEmbed(s, i, SetupCompleteEmbed(cfg), true); err != nil {
		log.Errorf("Error sending game role setup confirmation: %v", err)
	}
}

// handleAdd handles /gameroles add
func (f *Feature) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, options []*discordgo.ApplicationCommandInteractionDataOption) {
	emoji := common.NormalizeEmoji(common.StringOption(options, "emoji"))
	roleID, ok := common.SnowflakeOption(options, "role")
	if !ok {
		common.RespondWithError(s, i, "Please choose a role")
		return
	}

	cfg, err := f.setup.AddGameRoleMapping(guildID, emoji, roleID)
	if err != nil {
		common.HandleError(s, i, common.NewUserError("Please provide an emoji and a role", err.Error()), false)
		return
	}

	message := fmt.Sprintf("Added game role: %s → %s (%d configured)", emoji, common.GetRoleMention(roleID), len(cfg.EmojiToRole))
	if cfg.Enabled {
		message += ". Run `/gameroles setup` again to refresh the selection message."
	}
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to game role add: %v", err)
	}
}

// handleRemove handles /gameroles remove
func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, options []*discordgo.ApplicationCommandInteractionDataOption) {
	emoji := common.NormalizeEmoji(common.StringOption(options, "emoji"))

	if _, removed := f.setup.RemoveGameRoleMapping(guildID, emoji); !removed {
		common.RespondWithError(s, i, fmt.Sprintf("No game role is mapped to %s", emoji))
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Removed game role for %s", emoji), true); err != nil {
		log.Errorf("Error responding to game role remove: %v", err)
	}
}

// handleList handles /gameroles list
func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	cfg := f.setup.GameRoleStatus(guildID)
	if err := common.RespondWithEmbed(s, i, ListEmbed(cfg), true); err != nil {
		log.Errorf("Error responding to game role list: %v", err)
	}
}

// handleLimit handles /gameroles limit
func (f *Feature) handleLimit(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64, options []*discordgo.ApplicationCommandInteractionDataOption) {
	limit, _ := common.IntOption(options, "max")

	cfg, err := f.setup.SetMaxSelections(guildID, int(limit))
	if err != nil {
		common.HandleError(s, i, common.NewUserError("The limit must be zero or more", err.Error()), false)
		return
	}

	message := fmt.Sprintf("Members can now hold up to %d game roles", cfg.MaxSelections)
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Error responding to game role limit: %v", err)
	}
}

// handleStatus handles /gameroles status
func (f *Feature) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	cfg := f.setup.GameRoleStatus(guildID)
	if err := common.RespondWithEmbed(s, i, StatusEmbed(cfg), true); err != nil {
		log.Errorf("Error responding to game role status: %v", err)
	}
}

// handleDisable handles /gameroles disable
func (f *Feature) handleDisable(s *discordgo.Session, i *discordgo.InteractionCreate, guildID int64) {
	f.setup.DisableGameRoles(guildID)

	if err := common.RespondWithSuccess(s, i, "Game role system has been disabled", true); err != nil {
		log.Errorf("Error responding to game role disable: %v", err)
	}
}

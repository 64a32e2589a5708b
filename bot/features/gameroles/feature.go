package gameroles

import (
	"context"

	"rolekeeper/bot/common"
	"rolekeeper/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// Setup is the game role side of the setup service
type Setup interface {
	SetupGameRoles(ctx context.Context, guildID, channelID int64) (int64, error)
	AddGameRoleMapping(guildID int64, emoji string, roleID int64) (*entities.GameRoleConfig, error)
	RemoveGameRoleMapping(guildID int64, emoji string) (*entities.GameRoleConfig, bool)
	SetMaxSelections(guildID int64, limit int) (*entities.GameRoleConfig, error)
	DisableGameRoles(guildID int64) *entities.GameRoleConfig
	GameRoleStatus(guildID int64) *entities.GameRoleConfig
}

// Feature handles the /gameroles command
type Feature struct {
	setup Setup
}

// NewFeature creates a new game roles feature instance
func NewFeature(setup Setup) *Feature {
	return &Feature{setup: setup}
}

// HandleCommand routes game role subcommands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	guildID, err := common.ParseDiscordID(i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to parse guild ID"), false)
		return
	}

	sub := options[0]
	switch sub.Name {
	case "setup":
		f.handleSetup(s, i, guildID, sub.Options)
	case "add":
		f.handleAdd(s, i, guildID, sub.Options)
	case "remove":
		f.handleRemove(s, i, guildID, sub.Options)
	case "list":
		f.handleList(s, i, guildID)
	case "limit":
		f.handleLimit(s, i, guildID, sub.Options)
	case "status":
		f.handleStatus(s, i, guildID)
	case "disable":
		f.handleDisable(s, i, guildID)
	}
}

package verification

import (
	"context"

	"rolekeeper/bot/common"
	"rolekeeper/domain/entities"

	"github.com/bwmarrin/discordgo"
)

// Setup is the verification side of the setup service
type Setup interface {
	SetupVerification(ctx context.Context, guildID, roleID, channelID int64) (int64, error)
	DisableVerification(guildID int64) *entities.VerificationConfig
	SetWelcomeChannel(guildID, channelID int64) *entities.VerificationConfig
	VerificationStatus(guildID int64) *entities.VerificationConfig
}

// Feature handles the /verification command
type Feature struct {
	setup Setup
}

// NewFeature creates a new verification feature instance
func NewFeature(setup Setup) *Feature {
	return &Feature{setup: setup}
}

// HandleCommand routes verification subcommands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "setup":
		f.handleSetup(s, i, options[0].Options)
	case "disable":
		f.handleDisable(s, i)
	case "status":
		f.handleStatus(s, i)
	case "welcome":
		f.handleWelcome(s, i, options[0].Options)
	}
}

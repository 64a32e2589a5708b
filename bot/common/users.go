package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ParseDiscordID converts a Discord snowflake string to int64
func ParseDiscordID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatDiscordID converts an int64 snowflake to its string form
func FormatDiscordID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatDiscordID(userID) + ">"
}

// GetRoleMention returns a Discord mention string for a role
func GetRoleMention(roleID int64) string {
	return "<@&" + FormatDiscordID(roleID) + ">"
}

// GetChannelMention returns a Discord mention string for a channel
func GetChannelMention(channelID int64) string {
	return "<#" + FormatDiscordID(channelID) + ">"
}

// IsUserAdmin checks if the invoking member may manage role configuration.
// Interaction payloads carry the member's resolved permissions; the state
// cache is only consulted when they are missing.
func IsUserAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	if i.Member.Permissions != 0 {
		return hasAdminPermission(i.Member.Permissions)
	}
	if s == nil || s.State == nil {
		return false
	}

	for _, roleID := range i.Member.Roles {
		role, err := s.State.Role(i.GuildID, roleID)
		if err != nil {
			continue
		}
		if hasAdminPermission(role.Permissions) {
			return true
		}
	}
	return false
}

func hasAdminPermission(permissions int64) bool {
	return permissions&discordgo.PermissionAdministrator != 0 ||
		permissions&discordgo.PermissionManageRoles != 0
}

package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordIDRoundTrip(t *testing.T) {
	t.Parallel()

	id, err := ParseDiscordID("123456789012345678")
	require.NoError(t, err)
	assert.Equal(t, int64(123456789012345678), id)
	assert.Equal(t, "123456789012345678", FormatDiscordID(id))

	_, err = ParseDiscordID("not-a-snowflake")
	assert.Error(t, err)
}

func TestMentions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<@7>", GetUserMention(7))
	assert.Equal(t, "<@&42>", GetRoleMention(42))
	assert.Equal(t, "<#301>", GetChannelMention(301))
}

func TestIsUserAdmin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		member   *discordgo.Member
		expected bool
	}{
		{
			name:     "no member",
			member:   nil,
			expected: false,
		},
		{
			name:     "administrator",
			member:   &discordgo.Member{Permissions: discordgo.PermissionAdministrator},
			expected: true,
		},
		{
			name:     "manage roles",
			member:   &discordgo.Member{Permissions: discordgo.PermissionManageRoles | discordgo.PermissionSendMessages},
			expected: true,
		},
		{
			name:     "regular member",
			member:   &discordgo.Member{Permissions: discordgo.PermissionSendMessages},
			expected: false,
		},
		{
			name:     "no permissions and no state",
			member:   &discordgo.Member{},
			expected: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				GuildID: "1000",
				Member:  tt.member,
			}}
			assert.Equal(t, tt.expected, IsUserAdmin(nil, i))
		})
	}
}

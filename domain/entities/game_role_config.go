package entities

// DefaultMaxSelections is the selection limit for a guild that never set one
const DefaultMaxSelections = 5

// DefaultGameRoles are the emoji/role-name pairs suggested when an admin sets up
// the selector without a preexisting mapping
var DefaultGameRoles = map[string]string{
	"🎮":  "Gamer",
	"⚔️": "MMORPG Player",
	"🔫":  "FPS Player",
	"🏎️": "Racing Games",
	"🏀":  "Sports Games",
	"🧩":  "Puzzle Games",
	"📱":  "Mobile Gamer",
	"💻":  "PC Gamer",
	"🎯":  "Strategy Games",
	"👾":  "Retro Gamer",
}

// GameRoleConfig represents the per-guild self-service game role selector
type GameRoleConfig struct {
	GuildID          int64            `db:"guild_id"`
	Enabled          bool             `db:"enabled"`
	TrackedMessageID *int64           `db:"tracked_message_id"` // Nullable - selector message
	TrackedChannelID *int64           `db:"tracked_channel_id"` // Nullable - channel holding the selector
	EmojiToRole      map[string]int64 // emoji -> role ID, keys unique per guild
	MaxSelections    int              `db:"max_selections"`
}

// NewGameRoleConfig returns the defaults used for a guild seen for the first time
func NewGameRoleConfig(guildID int64, maxSelections int) *GameRoleConfig {
	if maxSelections < 0 {
		maxSelections = DefaultMaxSelections
	}
	return &GameRoleConfig{
		GuildID:       guildID,
		EmojiToRole:   make(map[string]int64),
		MaxSelections: maxSelections,
	}
}

// HasTrackedMessage checks if a selector message is bound
func (c *GameRoleConfig) HasTrackedMessage() bool {
	return c.TrackedMessageID != nil && *c.TrackedMessageID > 0
}

// RoleFor returns the role mapped to emoji
func (c *GameRoleConfig) RoleFor(emoji string) (int64, bool) {
	roleID, ok := c.EmojiToRole[emoji]
	return roleID, ok
}

// Tracks reports whether a reaction on messageID with emoji belongs to the selector
func (c *GameRoleConfig) Tracks(messageID int64, emoji string) bool {
	if !c.Enabled || !c.HasTrackedMessage() || *c.TrackedMessageID != messageID {
		return false
	}
	_, ok := c.EmojiToRole[emoji]
	return ok
}

// MappedRoles returns the set of role IDs in the mapping
func (c *GameRoleConfig) MappedRoles() map[int64]struct{} {
	roles := make(map[int64]struct{}, len(c.EmojiToRole))
	for _, roleID := range c.EmojiToRole {
		roles[roleID] = struct{}{}
	}
	return roles
}

// CountHeld counts how many of heldRoleIDs belong to the mapping
func (c *GameRoleConfig) CountHeld(heldRoleIDs []int64) int {
	mapped := c.MappedRoles()
	count := 0
	seen := make(map[int64]struct{}, len(heldRoleIDs))
	for _, roleID := range heldRoleIDs {
		if _, dup := seen[roleID]; dup {
			continue
		}
		seen[roleID] = struct{}{}
		if _, ok := mapped[roleID]; ok {
			count++
		}
	}
	return count
}

// Clone returns a deep copy safe to hand out of the store
func (c *GameRoleConfig) Clone() *GameRoleConfig {
	out := *c
	out.TrackedMessageID = cloneID(c.TrackedMessageID)
	out.TrackedChannelID = cloneID(c.TrackedChannelID)
	out.EmojiToRole = make(map[string]int64, len(c.EmojiToRole))
	for emoji, roleID := range c.EmojiToRole {
		out.EmojiToRole[emoji] = roleID
	}
	return &out
}

// GameRolePatch is a partial update. Nil fields are left unchanged;
// an ID pointing at 0 clears the binding. The mapping table is not part of
// the patch and is only changed through add/remove mapping operations.
type GameRolePatch struct {
	Enabled          *bool
	TrackedMessageID *int64
	TrackedChannelID *int64
	MaxSelections    *int
}

// Apply merges the patch into cfg
func (p GameRolePatch) Apply(cfg *GameRoleConfig) {
	if p.Enabled != nil {
		cfg.Enabled = *p.Enabled
	}
	if p.TrackedMessageID != nil {
		cfg.TrackedMessageID = normalizeID(p.TrackedMessageID)
	}
	if p.TrackedChannelID != nil {
		cfg.TrackedChannelID = normalizeID(p.TrackedChannelID)
	}
	if p.MaxSelections != nil && *p.MaxSelections >= 0 {
		cfg.MaxSelections = *p.MaxSelections
	}
}

// Int returns a pointer to n, for building patches
func Int(n int) *int {
	return &n
}

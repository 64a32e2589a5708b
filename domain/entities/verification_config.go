package entities

const (
	// DefaultVerifyEmoji is the reaction a new community watches for until configured otherwise
	DefaultVerifyEmoji = "✅"
	// DefaultVerifyPrompt is the text posted with the verification message
	DefaultVerifyPrompt = "React with ✅ to verify and gain access to the server!"
)

// VerificationConfig represents the per-guild verification gate
type VerificationConfig struct {
	GuildID          int64  `db:"guild_id"`
	Enabled          bool   `db:"enabled"`
	TrackedMessageID *int64 `db:"tracked_message_id"` // Nullable - prompt message members react to
	TrackedChannelID *int64 `db:"tracked_channel_id"` // Nullable - channel holding the prompt
	RoleID           *int64 `db:"role_id"`            // Nullable - role granted on verification
	Emoji            string `db:"emoji"`
	Prompt           string `db:"prompt"`
	WelcomeChannelID *int64 `db:"welcome_channel_id"` // Nullable - channel for join greetings
}

// NewVerificationConfig returns the defaults used for a guild seen for the first time
func NewVerificationConfig(guildID int64) *VerificationConfig {
	return &VerificationConfig{
		GuildID: guildID,
		Emoji:   DefaultVerifyEmoji,
		Prompt:  DefaultVerifyPrompt,
	}
}

// HasTrackedMessage checks if a prompt message is bound
func (c *VerificationConfig) HasTrackedMessage() bool {
	return c.TrackedMessageID != nil && *c.TrackedMessageID > 0
}

// HasRole checks if a verified role is bound
func (c *VerificationConfig) HasRole() bool {
	return c.RoleID != nil && *c.RoleID > 0
}

// HasWelcomeChannel checks if a welcome channel is configured
func (c *VerificationConfig) HasWelcomeChannel() bool {
	return c.WelcomeChannelID != nil && *c.WelcomeChannelID > 0
}

// Tracks reports whether a reaction on messageID with emoji belongs to this gate
func (c *VerificationConfig) Tracks(messageID int64, emoji string) bool {
	return c.Enabled && c.HasTrackedMessage() && *c.TrackedMessageID == messageID && c.Emoji == emoji
}

// Clone returns a deep copy safe to hand out of the store
func (c *VerificationConfig) Clone() *VerificationConfig {
	out := *c
	out.TrackedMessageID = cloneID(c.TrackedMessageID)
	out.TrackedChannelID = cloneID(c.TrackedChannelID)
	out.RoleID = cloneID(c.RoleID)
	out.WelcomeChannelID = cloneID(c.WelcomeChannelID)
	return &out
}

// VerificationPatch is a partial update. Nil fields are left unchanged;
// an ID pointing at 0 clears the binding.
type VerificationPatch struct {
	Enabled          *bool
	TrackedMessageID *int64
	TrackedChannelID *int64
	RoleID           *int64
	Emoji            *string
	Prompt           *string
	WelcomeChannelID *int64
}

// Apply merges the patch into cfg
func (p VerificationPatch) Apply(cfg *VerificationConfig) {
	if p.Enabled != nil {
		cfg.Enabled = *p.Enabled
	}
	if p.TrackedMessageID != nil {
		cfg.TrackedMessageID = normalizeID(p.TrackedMessageID)
	}
	if p.TrackedChannelID != nil {
		cfg.TrackedChannelID = normalizeID(p.TrackedChannelID)
	}
	if p.RoleID != nil {
		cfg.RoleID = normalizeID(p.RoleID)
	}
	if p.Emoji != nil && *p.Emoji != "" {
		cfg.Emoji = *p.Emoji
	}
	if p.Prompt != nil {
		cfg.Prompt = *p.Prompt
	}
	if p.WelcomeChannelID != nil {
		cfg.WelcomeChannelID = normalizeID(p.WelcomeChannelID)
	}
}

// ID returns a pointer to id, for building patches
func ID(id int64) *int64 {
	return &id
}

// Bool returns a pointer to b, for building patches
func Bool(b bool) *bool {
	return &b
}

// String returns a pointer to s, for building patches
func String(s string) *string {
	return &s
}

func normalizeID(id *int64) *int64 {
	if id == nil || *id <= 0 {
		return nil
	}
	v := *id
	return &v
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

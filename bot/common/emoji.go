package common

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// NormalizeEmoji converts the forms an emoji can arrive in to the key used in
// role mappings. Custom emoji typed into a command ("<:name:id>" or
// "<a:name:id>") become "name:id", matching what reaction events carry.
// Unicode emoji are returned trimmed.
func NormalizeEmoji(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "<") || !strings.HasSuffix(raw, ">") {
		return raw
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	inner = strings.TrimPrefix(inner, "a:")
	inner = strings.TrimPrefix(inner, ":")

	name, id, ok := strings.Cut(inner, ":")
	if !ok || name == "" || id == "" {
		return raw
	}
	return name + ":" + id
}

// ReactionEmoji returns the mapping key for an emoji carried by a reaction event
func ReactionEmoji(e discordgo.Emoji) string {
	if e.ID != "" && e.Name != "" {
		return e.Name + ":" + e.ID
	}
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}

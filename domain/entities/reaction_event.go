package entities

import "fmt"

// ReactionKind distinguishes reaction additions from removals
type ReactionKind string

const (
	ReactionAdded   ReactionKind = "added"
	ReactionRemoved ReactionKind = "removed"
)

// ReactionEvent is a normalized reaction notification from the gateway.
// It is consumed once by the router and then discarded.
type ReactionEvent struct {
	Kind      ReactionKind
	GuildID   int64
	ChannelID int64
	MessageID int64
	Emoji     string
	MemberID  int64
}

// MemberKey identifies the (guild, member) pair an event belongs to
type MemberKey struct {
	GuildID  int64
	MemberID int64
}

// Key returns the pair the event is ordered and locked by
func (e ReactionEvent) Key() MemberKey {
	return MemberKey{GuildID: e.GuildID, MemberID: e.MemberID}
}

func (k MemberKey) String() string {
	return fmt.Sprintf("%d/%d", k.GuildID, k.MemberID)
}

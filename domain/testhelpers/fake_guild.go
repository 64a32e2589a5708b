package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"
)

// Retraction records a reaction the fake removed on a member's behalf
type Retraction struct {
	ChannelID int64
	MessageID int64
	Emoji     string
	MemberID  int64
}

// FakeGuild is an in-memory RoleMutator and GuildDirectory. Latency can be
// injected to widen race windows in concurrency tests.
type FakeGuild struct {
	mu          sync.Mutex
	members     map[int64]map[int64]bool
	roleNames   map[int64]string
	guildName   string
	retractions []Retraction
	addCalls    int
	removeCalls int
	maxHeld     map[int64]int

	// Latency is slept inside every role read and write
	Latency time.Duration
	// FailAdd makes AddRole return this error when set
	FailAdd error
}

// NewFakeGuild creates a fake guild with the given members and no roles
func NewFakeGuild(name string, memberIDs ...int64) *FakeGuild {
	g := &FakeGuild{
		members:   make(map[int64]map[int64]bool),
		roleNames: make(map[int64]string),
		guildName: name,
		maxHeld:   make(map[int64]int),
	}
	for _, id := range memberIDs {
		g.members[id] = make(map[int64]bool)
	}
	return g
}

// NameRole sets a display name for roleID
func (g *FakeGuild) NameRole(roleID int64, name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roleNames[roleID] = name
}

// Grant gives memberID roleID directly, bypassing call counters
func (g *FakeGuild) Grant(memberID, roleID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[memberID][roleID] = true
}

// Holds reports whether memberID holds roleID
func (g *FakeGuild) Holds(memberID, roleID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[memberID][roleID]
}

// HeldCount returns how many of roleIDs memberID holds
func (g *FakeGuild) HeldCount(memberID int64, roleIDs ...int64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for _, id := range roleIDs {
		if g.members[memberID][id] {
			count++
		}
	}
	return count
}

// MaxHeld returns the largest number of roles memberID held at any point
func (g *FakeGuild) MaxHeld(memberID int64) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxHeld[memberID]
}

// Retractions returns the reactions removed so far
func (g *FakeGuild) Retractions() []Retraction {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Retraction, len(g.retractions))
	copy(out, g.retractions)
	return out
}

// AddCalls returns how many successful AddRole calls were made
func (g *FakeGuild) AddCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addCalls
}

// RemoveCalls returns how many successful RemoveRole calls were made
func (g *FakeGuild) RemoveCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeCalls
}

// RemoveMember simulates a member leaving
func (g *FakeGuild) RemoveMember(memberID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, memberID)
}

func (g *FakeGuild) sleep(ctx context.Context) error {
	if g.Latency <= 0 {
		return nil
	}
	select {
	case <-time.After(g.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *FakeGuild) MemberRoles(ctx context.Context, guildID, memberID int64) ([]int64, error) {
	if err := g.sleep(ctx); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	roles, ok := g.members[memberID]
	if !ok {
		return nil, interfaces.ErrMemberNotFound
	}
	out := make([]int64, 0, len(roles))
	for id := range roles {
		out = append(out, id)
	}
	return out, nil
}

func (g *FakeGuild) HasRole(ctx context.Context, guildID, memberID, roleID int64) (bool, error) {
	if err := g.sleep(ctx); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	roles, ok := g.members[memberID]
	if !ok {
		return false, interfaces.ErrMemberNotFound
	}
	return roles[roleID], nil
}

func (g *FakeGuild) AddRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	if err := g.sleep(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailAdd != nil {
		return g.FailAdd
	}
	roles, ok := g.members[memberID]
	if !ok {
		return interfaces.ErrMemberNotFound
	}
	roles[roleID] = true
	g.addCalls++
	if len(roles) > g.maxHeld[memberID] {
		g.maxHeld[memberID] = len(roles)
	}
	return nil
}

func (g *FakeGuild) RemoveRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	if err := g.sleep(ctx); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	roles, ok := g.members[memberID]
	if !ok {
		return interfaces.ErrMemberNotFound
	}
	delete(roles, roleID)
	g.removeCalls++
	return nil
}

func (g *FakeGuild) RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, memberID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.retractions = append(g.retractions, Retraction{
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     emoji,
		MemberID:  memberID,
	})
	return nil
}

func (g *FakeGuild) MemberExists(ctx context.Context, guildID, memberID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.members[memberID]
	return ok, nil
}

func (g *FakeGuild) GuildName(ctx context.Context, guildID int64) string {
	return g.guildName
}

func (g *FakeGuild) RoleName(ctx context.Context, guildID, roleID int64) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if name, ok := g.roleNames[roleID]; ok {
		return name
	}
	return fmt.Sprintf("role-%d", roleID)
}

// RoleExists reports true for every role named through NameRole
func (g *FakeGuild) RoleExists(ctx context.Context, guildID, roleID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.roleNames[roleID]
	return ok, nil
}

// RecordingNotifier collects notifications in memory
type RecordingNotifier struct {
	mu   sync.Mutex
	sent []entities.Notification
	// Err is returned from every Notify call when set
	Err error
}

func (n *RecordingNotifier) Notify(ctx context.Context, notification entities.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.sent = append(n.sent, notification)
	return nil
}

// Sent returns the recorded notifications
func (n *RecordingNotifier) Sent() []entities.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]entities.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// Kinds returns the kinds of the recorded notifications in order
func (n *RecordingNotifier) Kinds() []entities.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]entities.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		kinds = append(kinds, s.Kind)
	}
	return kinds
}

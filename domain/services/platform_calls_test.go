package services

import (
	"context"
	"testing"
	"time"

	"rolekeeper/domain/testhelpers"

	"github.com/stretchr/testify/assert"
)

// stalledGuild is a FakeGuild whose selected calls hang until the caller's
// context ends
type stalledGuild struct {
	*testhelpers.FakeGuild
	stallAdd    bool
	stallLookup bool
	stallNames  bool
}

func (g *stalledGuild) AddRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	if !g.stallAdd {
		return g.FakeGuild.AddRole(ctx, guildID, memberID, roleID, reason)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (g *stalledGuild) MemberExists(ctx context.Context, guildID, memberID int64) (bool, error) {
	if !g.stallLookup {
		return g.FakeGuild.MemberExists(ctx, guildID, memberID)
	}
	<-ctx.Done()
	return false, ctx.Err()
}

func (g *stalledGuild) GuildName(ctx context.Context, guildID int64) string {
	if !g.stallNames {
		return g.FakeGuild.GuildName(ctx, guildID)
	}
	<-ctx.Done()
	return "this server"
}

func (g *stalledGuild) RoleName(ctx context.Context, guildID, roleID int64) string {
	if !g.stallNames {
		return g.FakeGuild.RoleName(ctx, guildID, roleID)
	}
	<-ctx.Done()
	return "Unknown role"
}

func TestCallContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		timeout  time.Duration
		expected time.Duration
	}{
		{name: "explicit timeout", timeout: 50 * time.Millisecond, expected: 50 * time.Millisecond},
		{name: "zero falls back to default", timeout: 0, expected: DefaultCallTimeout},
		{name: "negative falls back to default", timeout: -time.Second, expected: DefaultCallTimeout},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			start := time.Now()
			ctx, cancel := callContext(context.Background(), tt.timeout)
			defer cancel()

			deadline, ok := ctx.Deadline()
			assert.True(t, ok)
			assert.WithinDuration(t, start.Add(tt.expected), deadline, 20*time.Millisecond)
		})
	}
}

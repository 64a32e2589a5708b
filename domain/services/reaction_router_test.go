package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	store    *ConfigStore
	guild    *testhelpers.FakeGuild
	notifier *testhelpers.RecordingNotifier
	router   *Router
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	store := NewConfigStore(ConfigStoreOptions{DefaultMaxSelections: 2})
	guild := newFakeGameGuild()
	notifier := &testhelpers.RecordingNotifier{}
	router := NewRouter(
		store,
		guild,
		NewVerificationHandler(guild, guild, notifier, 0),
		NewGameRoleHandler(guild, guild, notifier, NewMemberLocker(), 0),
		0,
	)
	return &routerFixture{store: store, guild: guild, notifier: notifier, router: router}
}

func (f *routerFixture) enableVerification() {
	f.store.UpdateVerificationConfig(testGuildID, entities.VerificationPatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(verifyMessageID),
		RoleID:           entities.ID(verifiedRoleID),
	})
}

func (f *routerFixture) enableGameRoles(messageID int64) {
	f.store.AddGameRoleMapping(testGuildID, "🎮", gamerRoleID)
	f.store.AddGameRoleMapping(testGuildID, "⚔️", mmorpgRoleID)
	f.store.UpdateGameRoleConfig(testGuildID, entities.GameRolePatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(messageID),
		TrackedChannelID: entities.ID(selectorChannelID),
	})
}

func TestRouter_Verification(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.enableVerification()

	result := f.router.Handle(context.Background(), verifyEvent(entities.ReactionAdded))
	require.NotNil(t, result.Verification)
	assert.Nil(t, result.GameRole)
	assert.Equal(t, OutcomeGranted, *result.Verification)
	assert.True(t, f.guild.Holds(testMemberID, verifiedRoleID))

	result = f.router.Handle(context.Background(), verifyEvent(entities.ReactionRemoved))
	require.NotNil(t, result.Verification)
	assert.Equal(t, OutcomeRevoked, *result.Verification)
	assert.False(t, f.guild.Holds(testMemberID, verifiedRoleID))

	result = f.router.Handle(context.Background(), verifyEvent(entities.ReactionAdded))
	require.NotNil(t, result.Verification)
	assert.Equal(t, OutcomeGranted, *result.Verification)
	assert.True(t, f.guild.Holds(testMemberID, verifiedRoleID))
	assert.Equal(t, 2, f.guild.AddCalls())
}

func TestRouter_GameRoles(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.enableGameRoles(selectorMessageID)

	result := f.router.Handle(context.Background(), gameEvent(entities.ReactionAdded, "⚔️"))
	require.NotNil(t, result.GameRole)
	assert.Nil(t, result.Verification)
	assert.Equal(t, OutcomeGranted, *result.GameRole)
	assert.True(t, f.guild.Holds(testMemberID, mmorpgRoleID))
}

func TestRouter_IgnoredEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(*routerFixture)
		event entities.ReactionEvent
	}{
		{
			name:  "nothing configured",
			setup: func(f *routerFixture) {},
			event: verifyEvent(entities.ReactionAdded),
		},
		{
			name: "wrong emoji on verification message",
			setup: func(f *routerFixture) {
				f.enableVerification()
			},
			event: func() entities.ReactionEvent {
				e := verifyEvent(entities.ReactionAdded)
				e.Emoji = "👍"
				return e
			}(),
		},
		{
			name: "verification disabled keeps bindings but ignores reactions",
			setup: func(f *routerFixture) {
				f.enableVerification()
				f.store.UpdateVerificationConfig(testGuildID, entities.VerificationPatch{Enabled: entities.Bool(false)})
			},
			event: verifyEvent(entities.ReactionAdded),
		},
		{
			name: "unmapped emoji on selector",
			setup: func(f *routerFixture) {
				f.enableGameRoles(selectorMessageID)
			},
			event: gameEvent(entities.ReactionAdded, "🏆"),
		},
		{
			name: "mapped emoji on another message",
			setup: func(f *routerFixture) {
				f.enableGameRoles(selectorMessageID)
			},
			event: func() entities.ReactionEvent {
				e := gameEvent(entities.ReactionAdded, "🎮")
				e.MessageID = 999
				return e
			}(),
		},
		{
			name: "same message in another guild",
			setup: func(f *routerFixture) {
				f.enableGameRoles(selectorMessageID)
			},
			event: func() entities.ReactionEvent {
				e := gameEvent(entities.ReactionAdded, "🎮")
				e.GuildID = testGuildID + 1
				return e
			}(),
		},
		{
			name: "member left the guild",
			setup: func(f *routerFixture) {
				f.enableGameRoles(selectorMessageID)
				f.guild.RemoveMember(testMemberID)
			},
			event: gameEvent(entities.ReactionAdded, "🎮"),
		},
		{
			name: "bot's own reaction",
			setup: func(f *routerFixture) {
				f.enableGameRoles(selectorMessageID)
				f.router.SetSelfID(testMemberID)
			},
			event: gameEvent(entities.ReactionAdded, "🎮"),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newRouterFixture(t)
			tt.setup(f)

			result := f.router.Handle(context.Background(), tt.event)
			assert.False(t, result.Matched())
			assert.Zero(t, f.guild.AddCalls())
			assert.Zero(t, f.guild.RemoveCalls())
			assert.Empty(t, f.guild.Retractions())
			assert.Empty(t, f.notifier.Sent())
		})
	}
}

func TestRouter_UnmatchedEventsNeverTouchPlatform(t *testing.T) {
	t.Parallel()

	roles := new(testhelpers.MockRoleMutator)
	directory := new(testhelpers.MockGuildDirectory)
	store := NewConfigStore(ConfigStoreOptions{})
	store.AddGameRoleMapping(testGuildID, "🎮", gamerRoleID)
	store.UpdateGameRoleConfig(testGuildID, entities.GameRolePatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(selectorMessageID),
	})

	router := NewRouter(store, directory,
		NewVerificationHandler(roles, directory, nil, 0),
		NewGameRoleHandler(roles, directory, nil, nil, 0),
		0,
	)

	router.Route(context.Background(), gameEvent(entities.ReactionAdded, "🔫"))

	// no expectations were set, any call would panic
	roles.AssertExpectations(t)
	directory.AssertExpectations(t)
}

func TestRouter_MemberLookupFailureDropsEvent(t *testing.T) {
	t.Parallel()

	roles := new(testhelpers.MockRoleMutator)
	directory := new(testhelpers.MockGuildDirectory)
	directory.On("MemberExists", mock.Anything, testGuildID, testMemberID).Return(false, errors.New("timeout"))

	store := NewConfigStore(ConfigStoreOptions{})
	store.UpdateVerificationConfig(testGuildID, entities.VerificationPatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(verifyMessageID),
		RoleID:           entities.ID(verifiedRoleID),
	})

	router := NewRouter(store, directory,
		NewVerificationHandler(roles, directory, nil, 0),
		NewGameRoleHandler(roles, directory, nil, nil, 0),
		0,
	)

	result := router.Handle(context.Background(), verifyEvent(entities.ReactionAdded))
	assert.False(t, result.Matched())
	directory.AssertExpectations(t)
}

func TestRouter_StalledMemberLookupIsBounded(t *testing.T) {
	t.Parallel()

	guild := &stalledGuild{FakeGuild: newFakeGameGuild(), stallLookup: true}
	store := NewConfigStore(ConfigStoreOptions{})
	store.UpdateVerificationConfig(testGuildID, entities.VerificationPatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(verifyMessageID),
		RoleID:           entities.ID(verifiedRoleID),
	})

	router := NewRouter(store, guild,
		NewVerificationHandler(guild, guild, nil, 0),
		NewGameRoleHandler(guild, guild, nil, nil, 0),
		50*time.Millisecond,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	result := router.Handle(ctx, verifyEvent(entities.ReactionAdded))

	assert.Less(t, time.Since(start), time.Second)
	assert.False(t, result.Matched())
	assert.Equal(t, 0, guild.AddCalls())
}

func TestRouter_SharedMessageFiresBothSubsystems(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.enableVerification()
	f.store.AddGameRoleMapping(testGuildID, entities.DefaultVerifyEmoji, gamerRoleID)
	f.store.UpdateGameRoleConfig(testGuildID, entities.GameRolePatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(verifyMessageID),
	})

	result := f.router.Handle(context.Background(), verifyEvent(entities.ReactionAdded))
	require.NotNil(t, result.Verification)
	require.NotNil(t, result.GameRole)
	assert.Equal(t, OutcomeGranted, *result.Verification)
	assert.Equal(t, OutcomeGranted, *result.GameRole)
	assert.True(t, f.guild.Holds(testMemberID, verifiedRoleID))
	assert.True(t, f.guild.Holds(testMemberID, gamerRoleID))
}

func TestRouter_FailureDoesNotStopOtherSubsystem(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)
	f.enableVerification()
	f.store.AddGameRoleMapping(testGuildID, entities.DefaultVerifyEmoji, gamerRoleID)
	f.store.UpdateGameRoleConfig(testGuildID, entities.GameRolePatch{
		Enabled:          entities.Bool(true),
		TrackedMessageID: entities.ID(verifyMessageID),
	})
	f.guild.FailAdd = errors.New("missing permissions")

	result := f.router.Handle(context.Background(), verifyEvent(entities.ReactionAdded))
	require.NotNil(t, result.Verification)
	require.NotNil(t, result.GameRole)
	assert.Equal(t, OutcomeFailed, *result.Verification)
	assert.Equal(t, OutcomeFailed, *result.GameRole)
}

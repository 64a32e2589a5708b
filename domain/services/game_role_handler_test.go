package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	selectorMessageID = int64(600)
	selectorChannelID = int64(301)
	gamerRoleID       = int64(11)
	mmorpgRoleID      = int64(12)
	fpsRoleID         = int64(13)
)

func gameRoleConfig(maxSelections int) *entities.GameRoleConfig {
	cfg := entities.NewGameRoleConfig(testGuildID, maxSelections)
	cfg.Enabled = true
	cfg.TrackedMessageID = entities.ID(selectorMessageID)
	cfg.TrackedChannelID = entities.ID(selectorChannelID)
	cfg.EmojiToRole = map[string]int64{
		"🎮":  gamerRoleID,
		"⚔️": mmorpgRoleID,
		"🔫":  fpsRoleID,
	}
	return cfg
}

func gameEvent(kind entities.ReactionKind, emoji string) entities.ReactionEvent {
	return entities.ReactionEvent{
		Kind:      kind,
		GuildID:   testGuildID,
		ChannelID: selectorChannelID,
		MessageID: selectorMessageID,
		Emoji:     emoji,
		MemberID:  testMemberID,
	}
}

func newFakeGameGuild() *testhelpers.FakeGuild {
	guild := testhelpers.NewFakeGuild("Test Guild", testMemberID)
	guild.NameRole(gamerRoleID, "Gamer")
	guild.NameRole(mmorpgRoleID, "MMORPG")
	guild.NameRole(fpsRoleID, "FPS")
	return guild
}

func TestGameRoleHandler_SelectionLimitScenario(t *testing.T) {
	t.Parallel()

	guild := newFakeGameGuild()
	notifier := &testhelpers.RecordingNotifier{}
	handler := NewGameRoleHandler(guild, guild, notifier, NewMemberLocker(), 0)
	cfg := gameRoleConfig(2)
	ctx := context.Background()

	expected := []Outcome{OutcomeGranted, OutcomeGranted, OutcomeRejected}
	for i, emoji := range []string{"🎮", "⚔️", "🔫"} {
		outcome, err := handler.Handle(ctx, gameEvent(entities.ReactionAdded, emoji), cfg)
		require.NoError(t, err)
		assert.Equal(t, expected[i], outcome, emoji)
	}

	assert.True(t, guild.Holds(testMemberID, gamerRoleID))
	assert.True(t, guild.Holds(testMemberID, mmorpgRoleID))
	assert.False(t, guild.Holds(testMemberID, fpsRoleID))

	assert.Equal(t, []testhelpers.Retraction{{
		ChannelID: selectorChannelID,
		MessageID: selectorMessageID,
		Emoji:     "🔫",
		MemberID:  testMemberID,
	}}, guild.Retractions())

	assert.Equal(t, []entities.NotificationKind{
		entities.NotificationRoleGranted,
		entities.NotificationRoleGranted,
		entities.NotificationLimitReached,
	}, notifier.Kinds())
	limitNotice := notifier.Sent()[2]
	assert.Equal(t, 2, limitNotice.Limit)
	assert.Equal(t, "FPS", limitNotice.RoleName)
}

func TestGameRoleHandler_RemovalFreesSlot(t *testing.T) {
	t.Parallel()

	guild := newFakeGameGuild()
	guild.Grant(testMemberID, gamerRoleID)
	guild.Grant(testMemberID, mmorpgRoleID)
	handler := NewGameRoleHandler(guild, guild, nil, nil, 0)
	cfg := gameRoleConfig(2)
	ctx := context.Background()

	outcome, err := handler.Handle(ctx, gameEvent(entities.ReactionRemoved, "🎮"), cfg)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRevoked, outcome)

	outcome, err = handler.Handle(ctx, gameEvent(entities.ReactionAdded, "🔫"), cfg)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, outcome)
	assert.Equal(t, 2, guild.HeldCount(testMemberID, gamerRoleID, mmorpgRoleID, fpsRoleID))
}

func TestGameRoleHandler_UnmappedRolesDoNotCount(t *testing.T) {
	t.Parallel()

	guild := newFakeGameGuild()
	guild.Grant(testMemberID, verifiedRoleID)
	guild.Grant(testMemberID, 9999)
	handler := NewGameRoleHandler(guild, guild, nil, nil, 0)

	outcome, err := handler.Handle(context.Background(), gameEvent(entities.ReactionAdded, "🎮"), gameRoleConfig(1))
	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, outcome)
}

func TestGameRoleHandler_Idempotence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     entities.ReactionKind
		held     bool
		expected Outcome
	}{
		{name: "add held role", kind: entities.ReactionAdded, held: true, expected: OutcomeNoop},
		{name: "remove unheld role", kind: entities.ReactionRemoved, held: false, expected: OutcomeNoop},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			guild := newFakeGameGuild()
			if tt.held {
				guild.Grant(testMemberID, gamerRoleID)
			}
			notifier := &testhelpers.RecordingNotifier{}
			handler := NewGameRoleHandler(guild, guild, notifier, nil, 0)

			outcome, err := handler.Handle(context.Background(), gameEvent(tt.kind, "🎮"), gameRoleConfig(2))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, outcome)
			assert.Zero(t, guild.AddCalls())
			assert.Zero(t, guild.RemoveCalls())
			assert.Empty(t, notifier.Sent())
		})
	}
}

func TestGameRoleHandler_HeldRoleAtLimitIsNotRejected(t *testing.T) {
	t.Parallel()

	guild := newFakeGameGuild()
	guild.Grant(testMemberID, gamerRoleID)
	guild.Grant(testMemberID, mmorpgRoleID)
	handler := NewGameRoleHandler(guild, guild, nil, nil, 0)

	outcome, err := handler.Handle(context.Background(), gameEvent(entities.ReactionAdded, "🎮"), gameRoleConfig(2))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, outcome)
	assert.Empty(t, guild.Retractions())
}

func TestGameRoleHandler_ZeroLimitRejectsEverything(t *testing.T) {
	t.Parallel()

	guild := newFakeGameGuild()
	handler := NewGameRoleHandler(guild, guild, nil, nil, 0)

	cfg := gameRoleConfig(2)
	entities.GameRolePatch{MaxSelections: entities.Int(0)}.Apply(cfg)

	outcome, err := handler.Handle(context.Background(), gameEvent(entities.ReactionAdded, "🎮"), cfg)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
	assert.Len(t, guild.Retractions(), 1)
}

func TestGameRoleHandler_UnmappedEmoji(t *testing.T) {
	t.Parallel()

	roles := new(testhelpers.MockRoleMutator)
	directory := new(testhelpers.MockGuildDirectory)
	handler := NewGameRoleHandler(roles, directory, nil, nil, 0)

	outcome, err := handler.Handle(context.Background(), gameEvent(entities.ReactionAdded, "🏆"), gameRoleConfig(2))
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoop, outcome)
	roles.AssertNotCalled(t, "MemberRoles", mock.Anything, mock.Anything, mock.Anything)
}

func TestGameRoleHandler_RetractionFailureStillRejects(t *testing.T) {
	t.Parallel()

	roles := new(testhelpers.MockRoleMutator)
	directory := new(testhelpers.MockGuildDirectory)
	notifier := new(testhelpers.MockNotifier)

	roles.On("MemberRoles", mock.Anything, testGuildID, testMemberID).Return([]int64{gamerRoleID, mmorpgRoleID}, nil)
	roles.On("RemoveReaction", mock.Anything, selectorChannelID, selectorMessageID, "🔫", testMemberID).Return(errors.New("missing permissions"))
	directory.On("GuildName", mock.Anything, testGuildID).Return("Test Guild")
	directory.On("RoleName", mock.Anything, testGuildID, fpsRoleID).Return("FPS")
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n entities.Notification) bool {
		return n.Kind == entities.NotificationLimitReached && n.Limit == 2
	})).Return(nil)

	handler := NewGameRoleHandler(roles, directory, notifier, nil, 0)
	outcome, err := handler.Handle(context.Background(), gameEvent(entities.ReactionAdded, "🔫"), gameRoleConfig(2))

	require.NoError(t, err)
	assert.Equal(t, OutcomeRejected, outcome)
	roles.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	roles.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestGameRoleHandler_PlatformFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		kind          entities.ReactionKind
		setupMocks    func(*testhelpers.MockRoleMutator)
		expectedError string
	}{
		{
			name: "reading roles fails",
			kind: entities.ReactionAdded,
			setupMocks: func(roles *testhelpers.MockRoleMutator) {
				roles.On("MemberRoles", mock.Anything, testGuildID, testMemberID).Return(nil, errors.New("timeout"))
			},
			expectedError: "failed to read member roles: timeout",
		},
		{
			name: "grant fails",
			kind: entities.ReactionAdded,
			setupMocks: func(roles *testhelpers.MockRoleMutator) {
				roles.On("MemberRoles", mock.Anything, testGuildID, testMemberID).Return([]int64{}, nil)
				roles.On("AddRole", mock.Anything, testGuildID, testMemberID, gamerRoleID, mock.Anything).Return(errors.New("role above bot"))
			},
			expectedError: "failed to add game role: role above bot",
		},
		{
			name: "revoke fails",
			kind: entities.ReactionRemoved,
			setupMocks: func(roles *testhelpers.MockRoleMutator) {
				roles.On("HasRole", mock.Anything, testGuildID, testMemberID, gamerRoleID).Return(true, nil)
				roles.On("RemoveRole", mock.Anything, testGuildID, testMemberID, gamerRoleID, mock.Anything).Return(errors.New("role above bot"))
			},
			expectedError: "failed to remove game role: role above bot",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			roles := new(testhelpers.MockRoleMutator)
			notifier := new(testhelpers.MockNotifier)
			tt.setupMocks(roles)

			handler := NewGameRoleHandler(roles, new(testhelpers.MockGuildDirectory), notifier, nil, 0)
			outcome, err := handler.Handle(context.Background(), gameEvent(tt.kind, "🎮"), gameRoleConfig(2))

			require.Error(t, err)
			assert.Equal(t, OutcomeFailed, outcome)
			assert.Equal(t, tt.expectedError, err.Error())
			notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
		})
	}
}

func TestGameRoleHandler_StalledGrantTimesOut(t *testing.T) {
	t.Parallel()

	guild := &stalledGuild{FakeGuild: newFakeGameGuild(), stallAdd: true}
	notifier := &testhelpers.RecordingNotifier{}
	locks := NewMemberLocker()
	handler := NewGameRoleHandler(guild, guild, notifier, locks, 50*time.Millisecond)

	start := time.Now()
	outcome, err := handler.Handle(context.Background(), gameEvent(entities.ReactionAdded, "🎮"), gameRoleConfig(2))

	require.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 0, locks.Len())
	assert.False(t, guild.Holds(testMemberID, gamerRoleID))
	assert.Empty(t, notifier.Sent())
}

func TestGameRoleHandler_StalledNameLookupsAreBounded(t *testing.T) {
	t.Parallel()

	guild := &stalledGuild{FakeGuild: newFakeGameGuild(), stallNames: true}
	notifier := &testhelpers.RecordingNotifier{}
	handler := NewGameRoleHandler(guild, guild, notifier, NewMemberLocker(), 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	outcome, err := handler.Handle(ctx, gameEvent(entities.ReactionAdded, "🎮"), gameRoleConfig(2))

	require.NoError(t, err)
	assert.Equal(t, OutcomeGranted, outcome)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, guild.Holds(testMemberID, gamerRoleID))

	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "this server", sent[0].GuildName)
	assert.Equal(t, "Unknown role", sent[0].RoleName)
}

func TestGameRoleHandler_ConcurrentAddsRespectLimit(t *testing.T) {
	t.Parallel()

	guild := newFakeGameGuild()
	guild.Grant(testMemberID, gamerRoleID)
	guild.Latency = 5 * time.Millisecond

	handler := NewGameRoleHandler(guild, guild, nil, NewMemberLocker(), time.Second)
	cfg := gameRoleConfig(2)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes []Outcome
	)
	for _, emoji := range []string{"⚔️", "🔫"} {
		wg.Add(1)
		go func(emoji string) {
			defer wg.Done()
			outcome, err := handler.Handle(context.Background(), gameEvent(entities.ReactionAdded, emoji), cfg)
			assert.NoError(t, err)
			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		}(emoji)
	}
	wg.Wait()

	assert.ElementsMatch(t, []Outcome{OutcomeGranted, OutcomeRejected}, outcomes)
	assert.Equal(t, 2, guild.HeldCount(testMemberID, gamerRoleID, mmorpgRoleID, fpsRoleID))
	assert.Len(t, guild.Retractions(), 1)
	assert.LessOrEqual(t, guild.MaxHeld(testMemberID), 2)
}

func TestGameRoleHandler_ConcurrentBurstNeverExceedsLimit(t *testing.T) {
	t.Parallel()

	guild := newFakeGameGuild()
	guild.Latency = time.Millisecond

	handler := NewGameRoleHandler(guild, guild, nil, NewMemberLocker(), time.Second)
	cfg := gameRoleConfig(1)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, emoji := range []string{"🎮", "⚔️", "🔫"} {
			wg.Add(1)
			go func(emoji string) {
				defer wg.Done()
				_, err := handler.Handle(context.Background(), gameEvent(entities.ReactionAdded, emoji), cfg)
				assert.NoError(t, err)
			}(emoji)
		}
	}
	wg.Wait()

	assert.Equal(t, 1, guild.HeldCount(testMemberID, gamerRoleID, mmorpgRoleID, fpsRoleID))
	assert.Equal(t, 1, guild.MaxHeld(testMemberID))
	assert.Equal(t, 1, guild.AddCalls())
}

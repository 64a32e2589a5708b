package testhelpers

import (
	"context"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockRoleMutator is a mock implementation of RoleMutator
type MockRoleMutator struct {
	mock.Mock
}

func (m *MockRoleMutator) MemberRoles(ctx context.Context, guildID, memberID int64) ([]int64, error) {
	args := m.Called(ctx, guildID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRoleMutator) HasRole(ctx context.Context, guildID, memberID, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, memberID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleMutator) AddRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	args := m.Called(ctx, guildID, memberID, roleID, reason)
	return args.Error(0)
}

func (m *MockRoleMutator) RemoveRole(ctx context.Context, guildID, memberID, roleID int64, reason string) error {
	args := m.Called(ctx, guildID, memberID, roleID, reason)
	return args.Error(0)
}

func (m *MockRoleMutator) RemoveReaction(ctx context.Context, channelID, messageID int64, emoji string, memberID int64) error {
	args := m.Called(ctx, channelID, messageID, emoji, memberID)
	return args.Error(0)
}

// MockGuildDirectory is a mock implementation of GuildDirectory
type MockGuildDirectory struct {
	mock.Mock
}

func (m *MockGuildDirectory) MemberExists(ctx context.Context, guildID, memberID int64) (bool, error) {
	args := m.Called(ctx, guildID, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuildDirectory) GuildName(ctx context.Context, guildID int64) string {
	args := m.Called(ctx, guildID)
	return args.String(0)
}

func (m *MockGuildDirectory) RoleName(ctx context.Context, guildID, roleID int64) string {
	args := m.Called(ctx, guildID, roleID)
	return args.String(0)
}

func (m *MockGuildDirectory) RoleExists(ctx context.Context, guildID, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, roleID)
	return args.Bool(0), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n entities.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockPromptPoster is a mock implementation of PromptPoster
type MockPromptPoster struct {
	mock.Mock
}

func (m *MockPromptPoster) PostVerificationPrompt(ctx context.Context, channelID int64, cfg *entities.VerificationConfig) (int64, error) {
	args := m.Called(ctx, channelID, cfg)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPromptPoster) PostGameRolePrompt(ctx context.Context, channelID int64, cfg *entities.GameRoleConfig, roleNames map[string]string) (int64, error) {
	args := m.Called(ctx, channelID, cfg, roleNames)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPromptPoster) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

// MockGuildConfigRepository is a mock implementation of GuildConfigRepository
type MockGuildConfigRepository struct {
	mock.Mock
}

func (m *MockGuildConfigRepository) LoadAll(ctx context.Context) ([]interfaces.GuildConfigSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.GuildConfigSnapshot), args.Error(1)
}

func (m *MockGuildConfigRepository) SaveVerificationConfig(ctx context.Context, cfg *entities.VerificationConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) SaveGameRoleConfig(ctx context.Context, cfg *entities.GameRoleConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

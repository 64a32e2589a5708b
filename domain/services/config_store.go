package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// DefaultPersistTimeout bounds a single write-through call to the repository
const DefaultPersistTimeout = 3 * time.Second

// ConfigStoreOptions configures a ConfigStore
type ConfigStoreOptions struct {
	// DefaultMaxSelections seeds new guilds; zero or less means entities.DefaultMaxSelections
	DefaultMaxSelections int
	DefaultVerifyEmoji   string
	// Repository is optional. When set, every mutation is written through.
	Repository     interfaces.GuildConfigRepository
	PersistTimeout time.Duration
}

// guildState holds one guild's configuration behind its own lock.
// Repository writes are serialized by persistMu, which readers never take,
// and a write is skipped when a newer version has already been stored.
type guildState struct {
	mu           sync.Mutex
	verification *entities.VerificationConfig
	gameRoles    *entities.GameRoleConfig

	verificationVersion uint64
	gameRolesVersion    uint64

	persistMu                    sync.Mutex
	persistedVerificationVersion uint64
	persistedGameRolesVersion    uint64
}

// ConfigStore is the process-wide table of per-guild role configuration.
// Entries are created lazily on first access and live for the process lifetime.
// All reads and writes for a guild are serialized by that guild's lock; callers
// only ever receive copies.
type ConfigStore struct {
	mu     sync.Mutex
	guilds map[int64]*guildState

	defaultMaxSelections int
	defaultVerifyEmoji   string
	repo                 interfaces.GuildConfigRepository
	persistTimeout       time.Duration
}

// NewConfigStore creates an empty store
func NewConfigStore(opts ConfigStoreOptions) *ConfigStore {
	if opts.DefaultMaxSelections <= 0 {
		opts.DefaultMaxSelections = entities.DefaultMaxSelections
	}
	if opts.DefaultVerifyEmoji == "" {
		opts.DefaultVerifyEmoji = entities.DefaultVerifyEmoji
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = DefaultPersistTimeout
	}
	return &ConfigStore{
		guilds:               make(map[int64]*guildState),
		defaultMaxSelections: opts.DefaultMaxSelections,
		defaultVerifyEmoji:   opts.DefaultVerifyEmoji,
		repo:                 opts.Repository,
		persistTimeout:       opts.PersistTimeout,
	}
}

// Hydrate loads every stored guild from the repository. It is a no-op without one.
func (s *ConfigStore) Hydrate(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	snapshots, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load guild configs: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range snapshots {
		var guildID int64
		switch {
		case snap.Verification != nil:
			guildID = snap.Verification.GuildID
		case snap.GameRoles != nil:
			guildID = snap.GameRoles.GuildID
		default:
			continue
		}

		state := s.newGuildState(guildID)
		if snap.Verification != nil {
			state.verification = snap.Verification.Clone()
		}
		if snap.GameRoles != nil {
			state.gameRoles = snap.GameRoles.Clone()
		}
		s.guilds[guildID] = state
	}

	log.WithField("guilds", len(snapshots)).Info("Hydrated role configuration from repository")
	return nil
}

// GetVerificationConfig returns the guild's verification config, creating defaults if absent
func (s *ConfigStore) GetVerificationConfig(guildID int64) *entities.VerificationConfig {
	state := s.guild(guildID)
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.verification.Clone()
}

// GetGameRoleConfig returns the guild's game role config, creating defaults if absent
func (s *ConfigStore) GetGameRoleConfig(guildID int64) *entities.GameRoleConfig {
	state := s.guild(guildID)
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.gameRoles.Clone()
}

// Snapshot returns both configs of a guild read under a single lock acquisition
func (s *ConfigStore) Snapshot(guildID int64) (*entities.VerificationConfig, *entities.GameRoleConfig) {
	state := s.guild(guildID)
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.verification.Clone(), state.gameRoles.Clone()
}

// UpdateVerificationConfig merges patch into the guild's verification config
func (s *ConfigStore) UpdateVerificationConfig(guildID int64, patch entities.VerificationPatch) *entities.VerificationConfig {
	state := s.guild(guildID)

	state.mu.Lock()
	patch.Apply(state.verification)
	state.verificationVersion++
	version := state.verificationVersion
	updated := state.verification.Clone()
	state.mu.Unlock()

	s.persistVerification(state, version, updated)
	return updated.Clone()
}

// UpdateGameRoleConfig merges patch into the guild's game role config
func (s *ConfigStore) UpdateGameRoleConfig(guildID int64, patch entities.GameRolePatch) *entities.GameRoleConfig {
	return s.mutateGameRoles(guildID, func(cfg *entities.GameRoleConfig) bool {
		patch.Apply(cfg)
		return true
	})
}

// AddGameRoleMapping inserts or overwrites the role bound to emoji
func (s *ConfigStore) AddGameRoleMapping(guildID int64, emoji string, roleID int64) *entities.GameRoleConfig {
	return s.mutateGameRoles(guildID, func(cfg *entities.GameRoleConfig) bool {
		cfg.EmojiToRole[emoji] = roleID
		return true
	})
}

// RemoveGameRoleMapping deletes the mapping for emoji. Removing an absent key is a no-op
// and reports false.
func (s *ConfigStore) RemoveGameRoleMapping(guildID int64, emoji string) (*entities.GameRoleConfig, bool) {
	removed := false
	cfg := s.mutateGameRoles(guildID, func(cfg *entities.GameRoleConfig) bool {
		if _, ok := cfg.EmojiToRole[emoji]; !ok {
			return false
		}
		delete(cfg.EmojiToRole, emoji)
		removed = true
		return true
	})
	return cfg, removed
}

// mutateGameRoles applies fn under the guild lock and persists the result after
// releasing it. fn reports whether it changed anything.
func (s *ConfigStore) mutateGameRoles(guildID int64, fn func(cfg *entities.GameRoleConfig) bool) *entities.GameRoleConfig {
	state := s.guild(guildID)

	state.mu.Lock()
	changed := fn(state.gameRoles)
	if changed {
		state.gameRolesVersion++
	}
	version := state.gameRolesVersion
	updated := state.gameRoles.Clone()
	state.mu.Unlock()

	if changed {
		s.persistGameRoles(state, version, updated)
	}
	return updated.Clone()
}

// guild returns the state for guildID, creating it with defaults on first access
func (s *ConfigStore) guild(guildID int64) *guildState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.guilds[guildID]
	if !ok {
		state = s.newGuildState(guildID)
		s.guilds[guildID] = state
	}
	return state
}

// newGuildState builds a default entry (must be called with s.mu held)
func (s *ConfigStore) newGuildState(guildID int64) *guildState {
	verification := entities.NewVerificationConfig(guildID)
	verification.Emoji = s.defaultVerifyEmoji
	return &guildState{
		verification: verification,
		gameRoles:    entities.NewGameRoleConfig(guildID, s.defaultMaxSelections),
	}
}

// persistVerification writes cfg through to the repository unless a newer
// version was stored first. It must be called without state.mu held.
func (s *ConfigStore) persistVerification(state *guildState, version uint64, cfg *entities.VerificationConfig) {
	if s.repo == nil {
		return
	}

	state.persistMu.Lock()
	defer state.persistMu.Unlock()
	if version <= state.persistedVerificationVersion {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	if err := s.repo.SaveVerificationConfig(ctx, cfg); err != nil {
		log.WithError(err).WithField("guild_id", cfg.GuildID).Error("Failed to persist verification config")
		return
	}
	state.persistedVerificationVersion = version
}

// persistGameRoles writes cfg through to the repository unless a newer
// version was stored first. It must be called without state.mu held.
func (s *ConfigStore) persistGameRoles(state *guildState, version uint64, cfg *entities.GameRoleConfig) {
	if s.repo == nil {
		return
	}

	state.persistMu.Lock()
	defer state.persistMu.Unlock()
	if version <= state.persistedGameRolesVersion {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()

	if err := s.repo.SaveGameRoleConfig(ctx, cfg); err != nil {
		log.WithError(err).WithField("guild_id", cfg.GuildID).Error("Failed to persist game role config")
		return
	}
	state.persistedGameRolesVersion = version
}

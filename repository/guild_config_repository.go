package repository

import (
	"context"
	"fmt"
	"sort"

	"rolekeeper/database"
	"rolekeeper/domain/entities"
	"rolekeeper/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// GuildConfigRepository stores verification and game role configuration in Postgres
type GuildConfigRepository struct {
	db *database.DB
	q  queryable
}

// NewGuildConfigRepository creates a new guild config repository
func NewGuildConfigRepository(db *database.DB) *GuildConfigRepository {
	return &GuildConfigRepository{db: db, q: db.Pool}
}

// LoadAll returns the stored configuration of every guild
func (r *GuildConfigRepository) LoadAll(ctx context.Context) ([]interfaces.GuildConfigSnapshot, error) {
	snapshots := make(map[int64]*interfaces.GuildConfigSnapshot)
	snapshotFor := func(guildID int64) *interfaces.GuildConfigSnapshot {
		snap, ok := snapshots[guildID]
		if !ok {
			snap = &interfaces.GuildConfigSnapshot{}
			snapshots[guildID] = snap
		}
		return snap
	}

	verifications, err := r.loadVerificationConfigs(ctx)
	if err != nil {
		return nil, err
	}
	for _, cfg := range verifications {
		snapshotFor(cfg.GuildID).Verification = cfg
	}

	gameRoles, err := r.loadGameRoleConfigs(ctx)
	if err != nil {
		return nil, err
	}
	for _, cfg := range gameRoles {
		snapshotFor(cfg.GuildID).GameRoles = cfg
	}

	guildIDs := make([]int64, 0, len(snapshots))
	for id := range snapshots {
		guildIDs = append(guildIDs, id)
	}
	sort.Slice(guildIDs, func(i, j int) bool { return guildIDs[i] < guildIDs[j] })

	result := make([]interfaces.GuildConfigSnapshot, 0, len(guildIDs))
	for _, id := range guildIDs {
		result = append(result, *snapshots[id])
	}
	return result, nil
}

func (r *GuildConfigRepository) loadVerificationConfigs(ctx context.Context) ([]*entities.VerificationConfig, error) {
	query := `
		SELECT guild_id, enabled, tracked_message_id, tracked_channel_id, role_id,
		       emoji, prompt, welcome_channel_id
		FROM verification_configs
		ORDER BY guild_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query verification configs: %w", err)
	}
	defer rows.Close()

	var configs []*entities.VerificationConfig
	for rows.Next() {
		var cfg entities.VerificationConfig
		if err := rows.Scan(
			&cfg.GuildID,
			&cfg.Enabled,
			&cfg.TrackedMessageID,
			&cfg.TrackedChannelID,
			&cfg.RoleID,
			&cfg.Emoji,
			&cfg.Prompt,
			&cfg.WelcomeChannelID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan verification config: %w", err)
		}
		configs = append(configs, &cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verification configs: %w", err)
	}

	return configs, nil
}

func (r *GuildConfigRepository) loadGameRoleConfigs(ctx context.Context) ([]*entities.GameRoleConfig, error) {
	query := `
		SELECT guild_id, enabled, tracked_message_id, tracked_channel_id, max_selections
		FROM game_role_configs
		ORDER BY guild_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query game role configs: %w", err)
	}
	defer rows.Close()

	byGuild := make(map[int64]*entities.GameRoleConfig)
	var configs []*entities.GameRoleConfig
	for rows.Next() {
		cfg := &entities.GameRoleConfig{EmojiToRole: make(map[string]int64)}
		if err := rows.Scan(
			&cfg.GuildID,
			&cfg.Enabled,
			&cfg.TrackedMessageID,
			&cfg.TrackedChannelID,
			&cfg.MaxSelections,
		); err != nil {
			return nil, fmt.Errorf("failed to scan game role config: %w", err)
		}
		byGuild[cfg.GuildID] = cfg
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game role configs: %w", err)
	}

	mappingRows, err := r.q.Query(ctx, `SELECT guild_id, emoji, role_id FROM game_role_mappings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query game role mappings: %w", err)
	}
	defer mappingRows.Close()

	for mappingRows.Next() {
		var (
			guildID int64
			emoji   string
			roleID  int64
		)
		if err := mappingRows.Scan(&guildID, &emoji, &roleID); err != nil {
			return nil, fmt.Errorf("failed to scan game role mapping: %w", err)
		}
		if cfg, ok := byGuild[guildID]; ok {
			cfg.EmojiToRole[emoji] = roleID
		}
	}
	if err := mappingRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game role mappings: %w", err)
	}

	return configs, nil
}

// SaveVerificationConfig upserts a verification config
func (r *GuildConfigRepository) SaveVerificationConfig(ctx context.Context, cfg *entities.VerificationConfig) error {
	query := `
		INSERT INTO verification_configs (
			guild_id, enabled, tracked_message_id, tracked_channel_id, role_id,
			emoji, prompt, welcome_channel_id, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (guild_id) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			tracked_message_id = EXCLUDED.tracked_message_id,
			tracked_channel_id = EXCLUDED.tracked_channel_id,
			role_id = EXCLUDED.role_id,
			emoji = EXCLUDED.emoji,
			prompt = EXCLUDED.prompt,
			welcome_channel_id = EXCLUDED.welcome_channel_id,
			updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query,
		cfg.GuildID,
		cfg.Enabled,
		cfg.TrackedMessageID,
		cfg.TrackedChannelID,
		cfg.RoleID,
		cfg.Emoji,
		cfg.Prompt,
		cfg.WelcomeChannelID,
	)
	if err != nil {
		return fmt.Errorf("failed to save verification config for guild %d: %w", cfg.GuildID, err)
	}
	return nil
}

// SaveGameRoleConfig upserts a game role config and replaces its mapping table
func (r *GuildConfigRepository) SaveGameRoleConfig(ctx context.Context, cfg *entities.GameRoleConfig) error {
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO game_role_configs (
				guild_id, enabled, tracked_message_id, tracked_channel_id, max_selections, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (guild_id) DO UPDATE SET
				enabled = EXCLUDED.enabled,
				tracked_message_id = EXCLUDED.tracked_message_id,
				tracked_channel_id = EXCLUDED.tracked_channel_id,
				max_selections = EXCLUDED.max_selections,
				updated_at = NOW()
		`,
			cfg.GuildID,
			cfg.Enabled,
			cfg.TrackedMessageID,
			cfg.TrackedChannelID,
			cfg.MaxSelections,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert game role config: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM game_role_mappings WHERE guild_id = $1`, cfg.GuildID); err != nil {
			return fmt.Errorf("failed to clear game role mappings: %w", err)
		}

		if len(cfg.EmojiToRole) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for emoji, roleID := range cfg.EmojiToRole {
			batch.Queue(`INSERT INTO game_role_mappings (guild_id, emoji, role_id) VALUES ($1, $2, $3)`,
				cfg.GuildID, emoji, roleID)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert game role mappings: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save game role config for guild %d: %w", cfg.GuildID, err)
	}
	return nil
}

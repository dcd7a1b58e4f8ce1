package database

import (
	"context"
	"database/sql"
	"log"
	"time"
)

const channelRepoTimeout = 2 * time.Second

// ChannelSettings are per-channel overrides for the configured defaults.
// Zero values mean "no override".
type ChannelSettings struct {
	Quality     string
	SearchLimit int
}

type ChannelRepository struct {
	db *sql.DB
}

func NewChannelRepository() *ChannelRepository {
	return &ChannelRepository{db: GetDB()}
}

func (r *ChannelRepository) UpsertSettings(channelID string, settings ChannelSettings) error {
	if r == nil || r.db == nil {
		return nil
	}
	if channelID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), channelRepoTimeout)
	defer cancel()

	const query = `
		INSERT INTO channel_settings (channel_id, quality, search_limit, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (channel_id)
		DO UPDATE SET
			quality = EXCLUDED.quality,
			search_limit = EXCLUDED.search_limit,
			updated_at = NOW();
	`

	_, err := r.db.ExecContext(ctx, query, channelID, settings.Quality, settings.SearchLimit)
	return err
}

func (r *ChannelRepository) GetSettings(channelID string) (ChannelSettings, bool, error) {
	if r == nil || r.db == nil {
		return ChannelSettings{}, false, nil
	}
	if channelID == "" {
		return ChannelSettings{}, false, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), channelRepoTimeout)
	defer cancel()

	const query = `
		SELECT quality, search_limit
		FROM channel_settings
		WHERE channel_id = $1
	`

	var settings ChannelSettings
	err := r.db.QueryRowContext(ctx, query, channelID).Scan(&settings.Quality, &settings.SearchLimit)
	if err != nil {
		if err == sql.ErrNoRows {
			return ChannelSettings{}, false, nil
		}
		return ChannelSettings{}, false, err
	}

	return settings, true, nil
}

func (r *ChannelRepository) DeleteSettings(channelID string) error {
	if r == nil || r.db == nil {
		return nil
	}
	if channelID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), channelRepoTimeout)
	defer cancel()

	const query = `
		DELETE FROM channel_settings
		WHERE channel_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, channelID)
	return err
}

// ChannelSettings satisfies picker.Settings. Lookup errors degrade to "no
// override" with a log line.
func (r *ChannelRepository) ChannelSettings(_ context.Context, conversationID string) (string, int, bool) {
	settings, ok, err := r.GetSettings(conversationID)
	if err != nil {
		log.Printf("channel settings lookup failed for %s: %v", conversationID, err)
		return "", 0, false
	}
	if !ok {
		return "", 0, false
	}
	return settings.Quality, settings.SearchLimit, true
}

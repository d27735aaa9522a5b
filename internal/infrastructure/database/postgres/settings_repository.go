package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"wellness-center/internal/domain/settings"
	"wellness-center/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
)

type SettingsRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ settings.SettingsRepository = (*SettingsRepository)(nil)

func NewSettingsRepository(db DBPool, logger *slog.Logger) *SettingsRepository {
	if db == nil {
		panic("DBPool cannot be nil for SettingsRepository")
	}
	return &SettingsRepository{db: db, logger: logger.With("component", "SettingsRepository")}
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (value []byte, err error) {
	defer observe("settings_get", time.Now(), &err)

	query := `SELECT value FROM settings WHERE key = $1`

	if err = r.db.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.DebugContext(ctx, "Setting not found", slog.String("key", key))
			return nil, settings.ErrSettingNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to read setting", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to read setting %q: %w", apperrors.ErrDatabase, key, err)
	}
	return value, nil
}

func (r *SettingsRepository) Put(ctx context.Context, key string, value []byte) (err error) {
	defer observe("settings_put", time.Now(), &err)

	query := `
        INSERT INTO settings (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err = r.db.Exec(ctx, query, key, string(value)); err != nil {
		r.logger.ErrorContext(ctx, "Failed to store setting", slog.String("key", key), slog.Any("error", err))
		return fmt.Errorf("%w: failed to store setting %q: %w", apperrors.ErrDatabase, key, err)
	}

	r.logger.InfoContext(ctx, "Setting stored", slog.String("key", key))
	return nil
}

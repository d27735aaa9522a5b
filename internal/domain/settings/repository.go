package settings

import (
	"context"
	"errors"
	"fmt"
	"wellness-center/internal/pkg/apperrors"
)

const DefaultCriteriaKey = "membership_criteria"

var (
	ErrSettingNotFound       = fmt.Errorf("setting %w", apperrors.ErrNotFound)
	ErrCriteriaNotConfigured = fmt.Errorf("membership criteria %w", apperrors.ErrNotConfigured)
	ErrCacheMiss             = errors.New("cache miss")
)

// SettingsRepository stores JSON documents by key. Get returns
// ErrSettingNotFound when the key is absent.
type SettingsRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Put(ctx context.Context, key string, value []byte) error
}

// CriteriaCache holds the normalized criteria document. Get returns
// ErrCacheMiss when nothing is cached.
type CriteriaCache interface {
	Get(ctx context.Context, key string) ([]byte, error)

	Set(ctx context.Context, key string, value []byte) error

	Delete(ctx context.Context, key string) error
}

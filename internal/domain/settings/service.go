package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/infrastructure/monitoring"
	"wellness-center/internal/pkg/apperrors"
)

type CriteriaService interface {
	GetCriteria(ctx context.Context) (membership.Criteria, error)
	// EffectiveCriteria returns the stored criteria, or the built-in defaults
	// with configured=false when none are stored.
	EffectiveCriteria(ctx context.Context) (criteria membership.Criteria, configured bool, err error)
	UpdateCriteria(ctx context.Context, raw []byte) (membership.Criteria, error)
}

var _ CriteriaService = (*criteriaService)(nil)

type criteriaService struct {
	repo   SettingsRepository
	cache  CriteriaCache
	key    string
	logger *slog.Logger
}

// NewCriteriaService builds the service. cache may be nil.
func NewCriteriaService(repo SettingsRepository, cache CriteriaCache, key string, logger *slog.Logger) CriteriaService {
	if repo == nil || logger == nil {
		panic("CriteriaService dependencies cannot be nil")
	}
	if strings.TrimSpace(key) == "" {
		key = DefaultCriteriaKey
	}
	return &criteriaService{
		repo:   repo,
		cache:  cache,
		key:    key,
		logger: logger.With(slog.String("component", "criteriaService"), slog.String("key", key)),
	}
}

func (s *criteriaService) GetCriteria(ctx context.Context) (membership.Criteria, error) {
	raw, err := s.load(ctx)
	if err != nil {
		return membership.Criteria{}, err
	}

	criteria, err := membership.ParseCriteria(raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "Stored membership criteria are invalid", slog.Any("error", err))
		return membership.Criteria{}, fmt.Errorf("%w: stored membership criteria are invalid: %v", apperrors.ErrInternalServer, err)
	}
	return criteria, nil
}

func (s *criteriaService) EffectiveCriteria(ctx context.Context) (membership.Criteria, bool, error) {
	criteria, err := s.GetCriteria(ctx)
	if errors.Is(err, ErrCriteriaNotConfigured) {
		s.logger.WarnContext(ctx, "Membership criteria not configured, using built-in defaults")
		return membership.DefaultCriteria(), false, nil
	}
	if err != nil {
		return membership.Criteria{}, false, err
	}
	return criteria, true, nil
}

func (s *criteriaService) UpdateCriteria(ctx context.Context, raw []byte) (membership.Criteria, error) {
	s.logger.InfoContext(ctx, "Attempting to update membership criteria")

	criteria, err := membership.ParseCriteria(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Validation failed for membership criteria", slog.Any("error", err))
		return membership.Criteria{}, err
	}

	normalized, err := json.Marshal(criteria)
	if err != nil {
		return membership.Criteria{}, fmt.Errorf("%w: failed to encode criteria: %w", apperrors.ErrInternalServer, err)
	}

	// Invalidate before and after the write. A load that straddles both
	// deletes can still cache the old row until the TTL expires.
	s.invalidate(ctx)
	if err := s.repo.Put(ctx, s.key, normalized); err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to store membership criteria", slog.Any("error", err))
		return membership.Criteria{}, fmt.Errorf("failed to store membership criteria: %w", err)
	}
	s.invalidate(ctx)

	s.logger.InfoContext(ctx, "Successfully updated membership criteria")
	return criteria, nil
}

func (s *criteriaService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.key); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate cached criteria", slog.Any("error", err))
	}
}

func (s *criteriaService) load(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.key)
		switch {
		case err == nil:
			monitoring.RecordCriteriaCacheLookup("hit")
			return raw, nil
		case errors.Is(err, ErrCacheMiss):
			monitoring.RecordCriteriaCacheLookup("miss")
		default:
			monitoring.RecordCriteriaCacheLookup("error")
			s.logger.WarnContext(ctx, "Criteria cache lookup failed, reading from repository", slog.Any("error", err))
		}
	}

	raw, err := s.repo.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return nil, ErrCriteriaNotConfigured
		}
		s.logger.ErrorContext(ctx, "Repository failed to load membership criteria", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load membership criteria: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, s.key, raw); err != nil {
			s.logger.WarnContext(ctx, "Failed to populate criteria cache", slog.Any("error", err))
		}
	}
	return raw, nil
}

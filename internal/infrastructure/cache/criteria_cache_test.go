package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
	"wellness-center/internal/domain/settings"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedis struct {
	mock.Mock
}

func (m *MockRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *MockRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewStatusResult("OK", args.Error(0))
}

func (m *MockRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	args := m.Called(ctx, keys)
	return redis.NewIntResult(int64(len(keys)), args.Error(0))
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRedisCriteriaCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Hit", func(t *testing.T) {
		client := new(MockRedis)
		client.On("Get", ctx, "wellness:settings:membership_criteria").Return(`{"vip":{}}`, nil).Once()
		c := newRedisCriteriaCache(client, time.Minute, logger)

		value, err := c.Get(ctx, "membership_criteria")
		require.NoError(t, err)
		assert.Equal(t, `{"vip":{}}`, string(value))
	})

	t.Run("Miss", func(t *testing.T) {
		client := new(MockRedis)
		client.On("Get", ctx, mock.Anything).Return("", redis.Nil).Once()
		c := newRedisCriteriaCache(client, time.Minute, logger)

		_, err := c.Get(ctx, "membership_criteria")
		assert.ErrorIs(t, err, settings.ErrCacheMiss)
	})

	t.Run("Connection failure", func(t *testing.T) {
		client := new(MockRedis)
		connErr := errors.New("dial tcp: connection refused")
		client.On("Get", ctx, mock.Anything).Return("", connErr).Once()
		c := newRedisCriteriaCache(client, time.Minute, logger)

		_, err := c.Get(ctx, "membership_criteria")
		assert.ErrorIs(t, err, connErr)
		assert.NotErrorIs(t, err, settings.ErrCacheMiss)
	})
}

func TestRedisCriteriaCache_SetAndDelete(t *testing.T) {
	ctx := context.Background()
	client := new(MockRedis)
	value := []byte(`{"gold":{}}`)
	client.On("Set", ctx, "wellness:settings:membership_criteria", value, 5*time.Minute).Return(nil).Once()
	client.On("Del", ctx, []string{"wellness:settings:membership_criteria"}).Return(nil).Once()
	c := newRedisCriteriaCache(client, 5*time.Minute, logger)

	assert.NoError(t, c.Set(ctx, "membership_criteria", value))
	assert.NoError(t, c.Delete(ctx, "membership_criteria"))
	client.AssertExpectations(t)

	failing := new(MockRedis)
	failing.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("OOM")).Once()
	assert.Error(t, newRedisCriteriaCache(failing, time.Minute, logger).Set(ctx, "k", value))
}

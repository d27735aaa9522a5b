package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wellness-center/internal/app"
	"wellness-center/internal/batch"
	"wellness-center/internal/config"
	"wellness-center/internal/domain/classification"
	"wellness-center/internal/domain/settings"
	"wellness-center/internal/event"
	"wellness-center/internal/infrastructure/database/postgres"
	"wellness-center/internal/infrastructure/logging"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type reclassifier interface {
	ReclassifyCustomer(ctx context.Context, customerID int64, now time.Time) (*classification.Outcome, error)
}

type recomputer interface {
	RunWithProgress(ctx context.Context, progress batch.ProgressFunc) (batch.Report, error)
}

// services is what the commands need from the backend.
type services struct {
	criteria   settings.CriteriaService
	classifier reclassifier
	job        recomputer
}

// openFunc connects to the backend. The returned cleanup func is never nil
// when err is nil.
type openFunc func(ctx context.Context, configDir string) (*services, func(), error)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(openServices).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "wellnessctl",
		Short:         "Administer wellness center membership classification",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yml")

	connect := func(cmd *cobra.Command) (*services, func(), error) {
		return open(cmd.Context(), configDir)
	}

	root.AddCommand(recomputeCmd(connect))
	root.AddCommand(criteriaCmd(connect))
	return root
}

func openServices(ctx context.Context, configDir string) (*services, func(), error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.Logger)

	pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to apply database schema: %w", err)
	}

	redisClient := connectRedis(ctx, cfg.Redis, logger)
	conn, publisher := connectPublisher(cfg.RabbitMQ, logger)

	components := app.NewComponents(pool, redisClient, publisher, cfg, logger)
	cleanup := func() {
		if conn != nil {
			_ = conn.Close()
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		pool.Close()
	}

	return &services{
		criteria:   components.Criteria,
		classifier: components.Classification,
		job:        components.Job,
	}, cleanup, nil
}

// connectRedis returns nil when Redis is unavailable. Criteria updates then
// leave any cached copy held by the server to expire on its own.
func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unavailable, criteria cache will not be invalidated", "addr", cfg.Addr, "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// connectPublisher makes a single connection attempt.
func connectPublisher(cfg config.RabbitMQConfig, logger *slog.Logger) (*amqp.Connection, event.EventPublisher) {
	if cfg.Host == "" {
		return nil, nil
	}
	port := cfg.Port
	if port == 0 {
		port = 5672
	}
	uri := fmt.Sprintf("amqp://%s:%d", cfg.Host, port)
	if cfg.Username != "" {
		uri = fmt.Sprintf("amqp://%s:%s@%s:%d", cfg.Username, cfg.Password, cfg.Host, port)
	}

	conn, err := amqp.Dial(uri)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, classification changes will not be published", "error", err)
		return nil, nil
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.ExchangeName, logger)
	if err != nil {
		logger.Warn("Failed to set up RabbitMQ publisher", "error", err)
		_ = conn.Close()
		return nil, nil
	}
	return conn, publisher
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

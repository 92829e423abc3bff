// Package storage persists tutor sessions, quiz history, and the course catalog in a
// key-value store with append-only capped lists.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
)

// Well-known keys.
const (
	KeyCourses       = "courses"
	KeyTutorSessions = "tutor_sessions"

	MaxTutorSessions = 50
	MaxQuizHistory   = 100
)

// QuizHistoryKey returns the list key holding a learner's quiz attempts.
func QuizHistoryKey(userID string) string {
	return "quiz_history:" + userID
}

// Store is a string key-value store with list values. Get on a missing key returns an
// error wrapping models.ErrNotFound; List on a missing key returns an empty slice.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Append adds value to the list at key and, when max > 0, keeps only the last max items.
	Append(ctx context.Context, key, value string, max int) error
	List(ctx context.Context, key string) ([]string, error)
	Close() error
}

// Open returns the store selected by cfg.Driver.
func Open(cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLiteStore(cfg.DatabasePath)
	case config.DriverBadger:
		return NewBadgerStore(cfg.BadgerPath, cfg.InMemory, logger)
	case config.DriverRedis:
		return NewRedisStore(RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
	case config.DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Paths returns the on-disk locations used by the configured driver, for disk usage
// reporting.
func Paths(cfg *config.StorageConfig) []string {
	switch cfg.Driver {
	case config.DriverSQLite:
		return []string{cfg.DatabasePath, cfg.DatabasePath + "-wal", cfg.DatabasePath + "-shm"}
	case config.DriverBadger:
		if cfg.InMemory {
			return nil
		}
		return []string{cfg.BadgerPath}
	default:
		return nil
	}
}

func keepLast(items []string, max int) []string {
	if max > 0 && len(items) > max {
		return items[len(items)-max:]
	}
	return items
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

// RedisConfig holds connection parameters for a Redis store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore implements Store via rueidis. Lists map to Redis lists.
type RedisStore struct {
	client rueidis.Client
	prefix string
}

// NewRedisStore connects to cfg.Addr.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{cfg.Addr},
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	cmd := s.client.B().Get().Key(s.key(key)).Build()
	v, err := s.client.Do(ctx, cmd).ToString()
	if rueidis.IsRedisNil(err) {
		return "", fmt.Errorf("key %q: %w", key, models.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	cmd := s.client.B().Set().Key(s.key(key)).Value(value).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Append pushes value and trims in one MULTI/EXEC block.
func (s *RedisStore) Append(ctx context.Context, key, value string, max int) error {
	k := s.key(key)
	cmds := rueidis.Commands{
		s.client.B().Multi().Build(),
		s.client.B().Rpush().Key(k).Element(value).Build(),
	}
	if max > 0 {
		cmds = append(cmds, s.client.B().Ltrim().Key(k).Start(int64(-max)).Stop(-1).Build())
	}
	cmds = append(cmds, s.client.B().Exec().Build())
	return s.client.Dedicated(func(c rueidis.DedicatedClient) error {
		for _, resp := range c.DoMulti(ctx, cmds...) {
			if err := resp.Error(); err != nil {
				return fmt.Errorf("append %q: %w", key, err)
			}
		}
		return nil
	})
}

func (s *RedisStore) List(ctx context.Context, key string) ([]string, error) {
	cmd := s.client.B().Lrange().Key(s.key(key)).Start(0).Stop(-1).Build()
	items, err := s.client.Do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("list %q: %w", key, err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

func (s *RedisStore) Close() error {
	s.client.Close()
	return nil
}

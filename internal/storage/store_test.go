package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathbrawlstatsr-afk/cours/internal/config"
	"github.com/nathbrawlstatsr-afk/cours/internal/models"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	stores := map[string]Store{"memory": NewMemoryStore()}

	sqlite, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	stores["sqlite"] = sqlite

	bdg, err := NewBadgerStore("", true, nil)
	require.NoError(t, err)
	stores["badger"] = bdg

	if addr := os.Getenv("COURS_TEST_REDIS_ADDR"); addr != "" {
		rds, err := NewRedisStore(RedisConfig{Addr: addr, Prefix: fmt.Sprintf("cours-test:%s:", t.Name())})
		require.NoError(t, err)
		stores["redis"] = rds
	}

	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_GetSet(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, models.ErrNotFound)

			require.NoError(t, s.Set(ctx, KeyCourses, `[{"id":"c1"}]`))
			got, err := s.Get(ctx, KeyCourses)
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"c1"}]`, got)

			require.NoError(t, s.Set(ctx, KeyCourses, "[]"))
			got, err = s.Get(ctx, KeyCourses)
			require.NoError(t, err)
			assert.Equal(t, "[]", got)
		})
	}
}

func TestStore_AppendList(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			items, err := s.List(ctx, "empty")
			require.NoError(t, err)
			assert.Empty(t, items)

			key := QuizHistoryKey("alice")
			for i := 1; i <= 5; i++ {
				require.NoError(t, s.Append(ctx, key, fmt.Sprintf("attempt-%d", i), 3))
			}
			items, err = s.List(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, []string{"attempt-3", "attempt-4", "attempt-5"}, items)

			require.NoError(t, s.Append(ctx, "uncapped", "a", 0))
			require.NoError(t, s.Append(ctx, "uncapped", "b", 0))
			items, err = s.List(ctx, "uncapped")
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, items)
		})
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			key := QuizHistoryKey("u1")
			const writers = 50
			var wg sync.WaitGroup
			errs := make(chan error, writers)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if err := s.Append(ctx, key, fmt.Sprint(i), MaxQuizHistory); err != nil {
						errs <- err
					}
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Errorf("concurrent append lost a write: %v", err)
			}

			items, err := s.List(ctx, key)
			require.NoError(t, err)
			assert.Len(t, items, writers)
			seen := make(map[string]bool, len(items))
			for _, it := range items {
				seen[it] = true
			}
			assert.Len(t, seen, writers)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "cours.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Append(ctx, "l", "x", 10))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
	items, err := s.List(ctx, "l")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, items)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "badger")

	s, err := NewBadgerStore(dir, false, nil)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, KeyTutorSessions, "r1", MaxTutorSessions))
	require.NoError(t, s.Close())

	s, err = NewBadgerStore(dir, false, nil)
	require.NoError(t, err)
	defer s.Close()
	items, err := s.List(ctx, KeyTutorSessions)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, items)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		cfg     config.StorageConfig
		wantErr bool
	}{
		{config.StorageConfig{Driver: config.DriverMemory}, false},
		{config.StorageConfig{Driver: config.DriverSQLite, DatabasePath: filepath.Join(dir, "x.db")}, false},
		{config.StorageConfig{Driver: config.DriverBadger, InMemory: true}, false},
		{config.StorageConfig{Driver: config.DriverRedis}, true},
		{config.StorageConfig{Driver: "tape"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.cfg.Driver, func(t *testing.T) {
			s, err := Open(&tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, s.Close())
		})
	}
}

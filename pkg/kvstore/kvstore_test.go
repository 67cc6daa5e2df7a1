package kvstore

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisHashStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisHashStore(rdb), mr
}

func stores(t *testing.T) map[string]HashStore {
	redisStore, _ := newRedisStore(t)
	return map[string]HashStore{
		"redis":  redisStore,
		"memory": NewMemoryHashStore(),
	}
}

func TestHashStore_GetMissingKey(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			fields, err := s.HashGet(context.Background(), "nobody:nothing")
			require.NoError(t, err)
			assert.Empty(t, fields)
		})
	}
}

func TestHashStore_SetThenGet(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.HashSet(ctx, "u:s", map[string]string{
				"confirmed_symptoms": `["咳嗽","流鼻涕"]`,
				"pending":            "null",
			}))
			require.NoError(t, s.HashSet(ctx, "u:s", map[string]string{"pending": `"fake123"`}))

			fields, err := s.HashGet(ctx, "u:s")
			require.NoError(t, err)
			assert.Equal(t, `["咳嗽","流鼻涕"]`, fields["confirmed_symptoms"])
			assert.Equal(t, `"fake123"`, fields["pending"])
		})
	}
}

func TestHashStore_ConcurrentIncrementsAreDistinct(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			const workers = 20

			var wg sync.WaitGroup
			results := make([]int64, workers)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					n, err := s.HashIncrement(ctx, "u:s", "turn", 1)
					assert.NoError(t, err)
					results[i] = n
				}(i)
			}
			wg.Wait()

			sort.Slice(results, func(i, j int) bool { return results[i] < results[j] })
			for i, n := range results {
				assert.Equal(t, int64(i+1), n)
			}
		})
	}
}

func TestRedisHashStore_Unavailable(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.HashGet(context.Background(), "u:s")
	assert.Error(t, err)
	assert.Error(t, s.Ping(context.Background()))
}

func TestMemoryHashStore_IncrementNonInteger(t *testing.T) {
	s := NewMemoryHashStore()
	ctx := context.Background()
	require.NoError(t, s.HashSet(ctx, "k", map[string]string{"turn": "x"}))

	_, err := s.HashIncrement(ctx, "k", "turn", 1)
	assert.Error(t, err)
}

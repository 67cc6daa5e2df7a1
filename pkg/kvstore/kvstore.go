package kvstore

import "context"

// HashStore is the minimal key-value contract the dialogue core relies on.
// Implementations report their own failures; callers map them to DependencyUnavailable.
type HashStore interface {
	HashGet(ctx context.Context, key string) (map[string]string, error)
	// HashSet writes every field in one atomic operation
	HashSet(ctx context.Context, key string, fields map[string]string) error
	HashIncrement(ctx context.Context, key, field string, delta int64) (int64, error)
	Ping(ctx context.Context) error
}

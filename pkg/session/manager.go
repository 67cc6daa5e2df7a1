package session

import (
	"context"
	"sync"

	"poultry-diagnose-be/pkg/apperror"
	"poultry-diagnose-be/pkg/kvstore"
	"poultry-diagnose-be/pkg/store"
)

// Manager owns conversational state per (user, session) pair on top of a HashStore.
// It performs no retries; retry policy belongs to the store client.
type Manager struct {
	kv    kvstore.HashStore
	locks *keyedLock
}

// NewManager creates a new session manager
func NewManager(kv kvstore.HashStore) *Manager {
	return &Manager{kv: kv, locks: newKeyedLock()}
}

// Read returns the stored session, or a zero-value session when none exists.
func (m *Manager) Read(ctx context.Context, userID, sessionID string) (store.Session, error) {
	fields, err := m.kv.HashGet(ctx, store.Key(userID, sessionID))
	if err != nil {
		return store.Session{}, apperror.Unavailable("session.Read", err)
	}
	s, err := store.DecodeSession(userID, sessionID, fields)
	if err != nil {
		return store.Session{}, apperror.Unavailable("session.Read", err)
	}
	return s, nil
}

// MergeWrite applies patch on top of the stored session and writes the touched fields in one call.
// Returns the merged session as it now stands in the store.
func (m *Manager) MergeWrite(ctx context.Context, userID, sessionID string, patch store.SessionPatch) (store.Session, error) {
	current, err := m.Read(ctx, userID, sessionID)
	if err != nil {
		return store.Session{}, err
	}

	merged := patch.Apply(current)
	fields, err := patch.EncodeFields(merged)
	if err != nil {
		return store.Session{}, apperror.Unavailable("session.MergeWrite", err)
	}
	if err := m.kv.HashSet(ctx, store.Key(userID, sessionID), fields); err != nil {
		return store.Session{}, apperror.Unavailable("session.MergeWrite", err)
	}
	return merged, nil
}

// IncrementTurn atomically bumps the turn counter and returns the new value.
func (m *Manager) IncrementTurn(ctx context.Context, userID, sessionID string) (int64, error) {
	n, err := m.kv.HashIncrement(ctx, store.Key(userID, sessionID), store.FieldTurn, 1)
	if err != nil {
		return 0, apperror.Unavailable("session.IncrementTurn", err)
	}
	return n, nil
}

// Lock serializes read-compute-write sequences for one session within this process.
// The returned function releases the lock.
func (m *Manager) Lock(ctx context.Context, userID, sessionID string) (func(), error) {
	return m.locks.acquire(ctx, store.Key(userID, sessionID))
}

type lockEntry struct {
	ch   chan struct{}
	refs int
}

type keyedLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func newKeyedLock() *keyedLock {
	return &keyedLock{entries: make(map[string]*lockEntry)}
}

func (l *keyedLock) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				l.release(key, e)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

func (l *keyedLock) release(key string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazriqpedia/waybill/internal/logging"
	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
)

// DefaultWindow is the number of turns replayed to the model.
const DefaultWindow = 20

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates conversation memory, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.HistoryStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	window  int
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithWindow sets how many turns History returns. n <= 0 means unbounded.
func WithWindow(n int) Option {
	return func(m *Manager) {
		m.window = n
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager over the given history store.
func NewManager(store ports.HistoryStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		window:  DefaultWindow,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Window returns the configured history window.
func (m *Manager) Window() int {
	return m.window
}

// History returns the remembered turns of a conversation, oldest first.
// Callers already holding the conversation lock should use HistoryLocked.
func (m *Manager) History(ctx context.Context, id string) ([]domain.Turn, error) {
	var turns []domain.Turn
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		turns, err = m.HistoryLocked(ctx, id)
		return err
	})
	return turns, err
}

// HistoryLocked is History without locking.
func (m *Manager) HistoryLocked(ctx context.Context, id string) ([]domain.Turn, error) {
	turns, err := m.store.Load(ctx, id, m.window)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return turns, nil
}

// Record folds the user messages and final answers of a trace into memory.
func (m *Manager) Record(ctx context.Context, id string, trace []domain.Turn) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.RecordLocked(ctx, id, trace)
	})
}

// RecordLocked is Record without locking.
func (m *Manager) RecordLocked(ctx context.Context, id string, trace []domain.Turn) error {
	keep := make([]domain.Turn, 0, 2)
	for _, t := range trace {
		if t.Kind == domain.TurnUser || t.Kind == domain.TurnFinal {
			keep = append(keep, t)
		}
	}
	if len(keep) == 0 {
		return nil
	}
	if err := m.store.Append(ctx, id, keep...); err != nil {
		return fmt.Errorf("failed to record history: %w", err)
	}
	return nil
}

// Reset forgets a conversation.
func (m *Manager) Reset(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying history store.
func (m *Manager) Store() ports.HistoryStore {
	return m.store
}

// WithLock executes a function while holding the lock for the conversation.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"conversation_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
)

var _ ports.HistoryStore = (*Store)(nil)

// Store implements ports.HistoryStore in memory.
// Safe for concurrent use.
type Store struct {
	data     map[string][]domain.Turn
	maxTurns int
	mu       sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxTurns caps each conversation, dropping the oldest turns. 0 keeps everything.
func WithMaxTurns(n int) Option {
	return func(s *Store) {
		s.maxTurns = n
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string][]domain.Turn),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append adds turns to a conversation.
func (s *Store) Append(ctx context.Context, conversationID string, turns ...domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[conversationID] = capTurns(append(s.data[conversationID], turns...), s.maxTurns)
	return nil
}

// Load returns a copy of the last limit turns so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, conversationID string, limit int) ([]domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.data[conversationID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return slices.Clone(turns), nil
}

// Delete removes a conversation.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, conversationID)
	return nil
}

// List returns the conversations held in memory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// capTurns keeps the last n turns in a fresh slice so the dropped ones can be collected.
func capTurns(turns []domain.Turn, n int) []domain.Turn {
	if n <= 0 || len(turns) <= n {
		return turns
	}
	return slices.Clone(turns[len(turns)-n:])
}

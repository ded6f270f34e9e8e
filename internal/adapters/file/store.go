package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hazriqpedia/waybill/pkg/domain"
	"github.com/hazriqpedia/waybill/pkg/ports"
)

var _ ports.HistoryStore = (*Store)(nil)

// Store implements ports.HistoryStore using the local filesystem.
// Each conversation is a JSON array of turns in BasePath.
type Store struct {
	BasePath string
	// MaxTurns caps each file, dropping the oldest turns. 0 keeps everything.
	MaxTurns int
	mu       sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxTurns sets Store.MaxTurns.
func WithMaxTurns(n int) Option {
	return func(s *Store) {
		s.MaxTurns = n
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".waybill/history".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".waybill", "history")
	}
	s := &Store{BasePath: basePath}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(conversationID string) (string, error) {
	if conversationID == "" {
		return "", fmt.Errorf("conversationID cannot be empty")
	}
	if strings.ContainsAny(conversationID, `/\`) || conversationID == "." || conversationID == ".." {
		return "", fmt.Errorf("invalid conversationID %q", conversationID)
	}
	return filepath.Join(s.BasePath, conversationID+".json"), nil
}

// Append adds turns to the conversation file, rewriting it atomically.
func (s *Store) Append(ctx context.Context, conversationID string, turns ...domain.Turn) error {
	path, err := s.path(conversationID)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(path)
	if err != nil {
		return err
	}
	all := append(existing, turns...)
	if s.MaxTurns > 0 && len(all) > s.MaxTurns {
		all = all[len(all)-s.MaxTurns:]
	}
	return s.write(conversationID, path, all)
}

// Load returns the last limit turns of the conversation.
func (s *Store) Load(ctx context.Context, conversationID string, limit int) ([]domain.Turn, error) {
	path, err := s.path(conversationID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	turns, err := s.read(path)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

func (s *Store) read(path string) ([]domain.Turn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Turn{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var turns []domain.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return turns, nil
}

// write replaces the file through a synced temp file and a rename.
func (s *Store) write(conversationID, destPath string, turns []domain.Turn) error {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure history directory: %w", err)
	}

	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+conversationID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing history file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Delete removes the conversation file.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	path, err := s.path(conversationID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history file: %w", err)
	}
	return nil
}

// List returns the conversations with a history file.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

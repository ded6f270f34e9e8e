package research

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultOutputFile receives research output when no filename is given.
const DefaultOutputFile = "research_output.txt"

// Saver appends research output to text files inside a directory.
type Saver struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewSaver creates a saver writing into dir ("" means the working directory).
func NewSaver(dir string) *Saver {
	return &Saver{dir: dir, now: time.Now}
}

// WithClock replaces the timestamp source.
func (s *Saver) WithClock(now func() time.Time) *Saver {
	s.now = now
	return s
}

// Save appends a timestamped block holding data.
// Only the base name of filename is used so writes stay inside the directory.
func (s *Saver) Save(data, filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" {
		name = DefaultOutputFile
	}
	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		name = DefaultOutputFile
	}
	path := filepath.Join(s.dir, name)

	block := fmt.Sprintf("--- Research Output ---\nTimestamp: %s\n\n%s\n\n", s.now().Format("2006-01-02 15:04:05"), data)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return "Data successfully saved to " + path, nil
}

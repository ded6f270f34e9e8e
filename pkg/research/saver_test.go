package research

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaver_AppendsBlocks(t *testing.T) {
	dir := t.TempDir()
	clock := func() time.Time { return time.Date(2025, 5, 12, 9, 30, 0, 0, time.UTC) }
	s := NewSaver(dir).WithClock(clock)

	msg, err := s.Save("first", "")
	require.NoError(t, err)
	path := filepath.Join(dir, DefaultOutputFile)
	assert.Equal(t, "Data successfully saved to "+path, msg)

	_, err = s.Save("second", "")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := "--- Research Output ---\nTimestamp: 2025-05-12 09:30:00\n\nfirst\n\n" +
		"--- Research Output ---\nTimestamp: 2025-05-12 09:30:00\n\nsecond\n\n"
	assert.Equal(t, want, string(data))
}

func TestSaver_StaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir)

	msg, err := s.Save("x", "../../escape.txt")
	require.NoError(t, err)
	assert.Equal(t, "Data successfully saved to "+filepath.Join(dir, "escape.txt"), msg)

	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err)
}

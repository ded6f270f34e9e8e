package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Agent.MaxIterations)
	assert.Equal(t, 20, cfg.Agent.HistoryWindow)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, StoreMemory, cfg.Store.Type)
	assert.True(t, cfg.Shipment.ValidatePostal)
	assert.Equal(t, 100, cfg.Research.WikipediaChars)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "waybill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agent:
  max_iterations: 3
store:
  type: file
  ttl: 1h
llm:
  model: from-file
`), 0o644))

	t.Setenv("WAYBILL_LLM_MODEL", "from-env")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Agent.MaxIterations)
	assert.Equal(t, StoreFile, cfg.Store.Type)
	assert.Equal(t, time.Hour, cfg.Store.TTL)
	assert.Equal(t, "from-env", cfg.LLM.Model)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WAYBILL_STORE_TYPE", "postgres")

	_, err := Load(New(), "")
	assert.ErrorContains(t, err, "store.type")

	t.Setenv("WAYBILL_STORE_TYPE", "memory")
	t.Setenv("WAYBILL_AGENT_MAX_ITERATIONS", "0")
	_, err = Load(New(), "")
	assert.ErrorContains(t, err, "max_iterations")
}

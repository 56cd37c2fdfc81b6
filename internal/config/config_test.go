package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MaxRevisions)
	assert.Equal(t, 100, cfg.DefaultRowCap)
	assert.Contains(t, cfg.LargeTables, "nota")
	assert.Equal(t, 24*time.Hour, cfg.SchemaCacheTTL)
	assert.Equal(t, 15*time.Second, cfg.ExecutionTimeout)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 5*time.Minute, cfg.ResponseCacheTTL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("max_revisions: 4\ndefault_row_cap: 50\nlisten_addr: \":9000\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.MaxRevisions)
	assert.Equal(t, 50, cfg.DefaultRowCap)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	// Untouched keys keep their defaults.
	assert.Equal(t, 24*time.Hour, cfg.SchemaCacheTTL)
}

func TestLoadSecretsFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/portal")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/portal", cfg.DatabaseURL)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestValidateMissingSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

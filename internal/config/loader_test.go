package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(prev)) })
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", name), []byte(content), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "app:\n  name: movie-recommend-api\n")
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "movie-recommend-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, 40000, cfg.Recommend.LexicalMaxDocs)
	assert.Equal(t, 45000, cfg.Recommend.CompositeMaxCandidates)
	assert.Equal(t, 10, cfg.Recommend.DefaultLimit)
	assert.Equal(t, 50, cfg.Recommend.MaxLimit)
	assert.Equal(t, 4, cfg.Recommend.SectionLimit)
	assert.Equal(t, 10*time.Minute, cfg.Recommend.CacheTTL)
	assert.Equal(t, "/metrics", cfg.Observability.Metrics.Path)
	assert.False(t, cfg.Security.RateLimit.Enabled)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", `
recommend:
  lexical_max_docs: 100
  composite_max_candidates: 200
  default_limit: 5
`)
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Recommend.LexicalMaxDocs)
	assert.Equal(t, 200, cfg.Recommend.CompositeMaxCandidates)
	assert.Equal(t, 5, cfg.Recommend.DefaultLimit)
}

func TestLoadEnvFileMerge(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", "server:\n  http:\n    port: 8080\n")
	writeConfig(t, dir, "config.test.yaml", "server:\n  http:\n    port: 9090\n")
	chdir(t, dir)
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.HTTP.Port)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("MY_HOST", "db.internal")

	assert.Equal(t, "db.internal", expandEnv("${MY_HOST:localhost}"))
	assert.Equal(t, "localhost", expandEnv("${MISSING_VAR:localhost}"))
	assert.Equal(t, "${MISSING_VAR}", expandEnv("${MISSING_VAR}"))
	assert.Equal(t, "plain text", expandEnv("plain text"))
}

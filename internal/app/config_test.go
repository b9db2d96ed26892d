package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 64, cfg.GraphCacheSize)
	assert.Equal(t, 10*time.Minute, cfg.GraphCacheTTL)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.OtelEnabled)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Equal(t, "sdgraph", cfg.DB().Name)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "HTTP_ADDR: \":9090\"\nDB_DRIVER: postgres\nGRAPH_CACHE_SIZE: 8\nCORS_ORIGINS:\n  - https://a.example\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	t.Setenv("GRAPH_CACHE_SIZE", "12")
	t.Setenv("NEO4J_URI", "bolt://localhost:7687")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-token=abc")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DB().Driver)
	assert.Equal(t, 12, cfg.GraphCacheSize, "env wins over file")
	assert.Equal(t, []string{"https://a.example"}, cfg.CORSOrigins)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j().URI)
	assert.Equal(t, map[string]string{"x-token": "abc"}, cfg.Otel().Headers)
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("HTTP_ADDR: [\n"), 0o600))
	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " c ", ""}))
	assert.Nil(t, splitList(nil))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scan:
  min_size: 2KB
  hash: xxh3
  excludes: ['\.git/']
  progress_interval: 250ms
output:
  format: json
  dupes: true
log:
  level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "xxh3", cfg.Scan.Hash)
	assert.Equal(t, []string{`\.git/`}, cfg.Scan.Excludes)
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.ProgressInterval)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Dupes)
	assert.Equal(t, 10, cfg.Output.Top, "unset fields keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	size, err := cfg.MinSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), size)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "scan: [unterminated"},
		{"format", "output:\n  format: xml\n"},
		{"top", "output:\n  top: 0\n"},
		{"depth", "output:\n  depth: -1\n"},
		{"hash", "scan:\n  hash: sha1\n"},
		{"min size", "scan:\n  min_size: lots\n"},
		{"regex", "scan:\n  excludes: ['(']\n"},
		{"log level", "log:\n  level: shouty\n"},
		{"workers", "scan:\n  workers: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Output.Top = 25
	cfg.Scan.ProgressInterval = time.Second
	cfg.MetricsFile = "/var/lib/node_exporter/diskinsight.prom"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

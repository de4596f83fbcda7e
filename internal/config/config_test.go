package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saqif-community/shardkv/internal/config"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", cfg.Addr)
	require.Equal(t, 16, cfg.Segments)
}

func TestParseFlagsOverrideDefaults(t *testing.T) {
	cfg, err := config.Parse([]string{"--addr", "0.0.0.0:7000", "--segments", "32"})
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:7000", cfg.Addr)
	require.Equal(t, 32, cfg.Segments)
}

func TestParseRejectsNonPowerOfTwoSegments(t *testing.T) {
	_, err := config.Parse([]string{"--segments", "15"})
	require.Error(t, err)
}

func TestParseRejectsUnknownLogLevel(t *testing.T) {
	_, err := config.Parse([]string{"--log-level", "verbose"})
	require.Error(t, err)
}

func TestParseLoadsHuJSONConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shardkv.hujson")
	contents := `{
		// comments are allowed in HuJSON
		"addr": "127.0.0.1:9000",
		"segments": 8,
		"logLevel": "debug",
	}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := config.Parse([]string{"--config", path})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", cfg.Addr)
	require.Equal(t, 8, cfg.Segments)
	require.Equal(t, "debug", cfg.LogLevel)

	cfg, err = config.Parse([]string{"--config", path, "--segments", "4"})
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Segments)
	require.Equal(t, "127.0.0.1:9000", cfg.Addr)
}

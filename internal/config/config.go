// Package config defines shardkv-server's process bootstrap surface:
// command-line flags via pflag, with an optional commented-JSON config
// file overlay via hujson. Grounded on the minimal flag set spec.md §6
// names ("listen address; number of segments") plus the logging knobs
// the teacher pack's minilog exposes as flags.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/tailscale/hujson"
)

// Config is the fully resolved process configuration: flags overlaid
// onto an optional config file, with flags taking precedence.
type Config struct {
	Addr       string `json:"addr"`
	Segments   int    `json:"segments"`
	LogLevel   string `json:"logLevel"`
	ConfigFile string `json:"-"`
}

// Default returns the configuration spec.md §6 describes absent any
// flags or config file: 127.0.0.1:6000, 16 segments.
func Default() Config {
	return Config{
		Addr:     "127.0.0.1:6000",
		Segments: 16,
		LogLevel: "info",
	}
}

// Parse builds a Config from argv, reading an optional HuJSON config
// file named by --config before applying flags on top of it, so
// flags always win over file contents.
func Parse(argv []string) (Config, error) {
	cfg := Default()

	fs := pflag.NewFlagSet("shardkv-server", pflag.ContinueOnError)
	addr := fs.StringP("addr", "a", cfg.Addr, "TCP listen address")
	segments := fs.IntP("segments", "s", cfg.Segments, "number of store segments (power of two)")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	configFile := fs.String("config", "", "path to an optional HuJSON config file")

	if err := fs.Parse(argv); err != nil {
		return Config{}, err
	}

	if *configFile != "" {
		fileCfg, err := loadFile(*configFile)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}

	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "segments":
			cfg.Segments = *segments
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	cfg.ConfigFile = *configFile

	return cfg, cfg.Validate()
}

func loadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	standard, err := hujson.Standardize(raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(standard, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Validate enforces the invariants the store and logging layers rely on.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	if c.Segments <= 0 || c.Segments&(c.Segments-1) != 0 {
		return fmt.Errorf("config: segments must be a positive power of two, got %d", c.Segments)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

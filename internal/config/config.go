package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

// Transport names accepted in [ipc] transport.
const (
	TransportFile   = "file"
	TransportSQLite = "sqlite"
	TransportRedis  = "redis"
)

// Config holds all physics-lens configuration.
type Config struct {
	IPC      IPCConfig      `toml:"ipc"`
	Archive  ArchiveConfig  `toml:"archive"`
	Patterns PatternsConfig `toml:"patterns"`
	Log      LogConfig      `toml:"log"`
}

type IPCConfig struct {
	Transport      string       `toml:"transport"`
	Dir            string       `toml:"dir"`
	PollIntervalMs int          `toml:"poll_interval_ms"`
	TimeoutMs      int          `toml:"timeout_ms"`
	ResponderTags  []string     `toml:"responder_tags"`
	SQLite         SQLiteConfig `toml:"sqlite"`
	Redis          RedisConfig  `toml:"redis"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	Prefix     string `toml:"prefix"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// PatternsConfig points at an optional YAML file of custom patterns.
type PatternsConfig struct {
	File string `toml:"file"`
}

type LogConfig struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		IPC: IPCConfig{
			Transport:      TransportFile,
			Dir:            "~/.local/state/physics-lens/ipc",
			PollIntervalMs: 100,
			TimeoutMs:      30000,
			ResponderTags:  []string{"lens", "anchor"},
			SQLite: SQLiteConfig{
				Path: "~/.local/state/physics-lens/ipc.db",
			},
			Redis: RedisConfig{
				Addr:       "localhost:6379",
				Prefix:     "lens:ipc",
				TTLSeconds: 600,
			},
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Dir:     "~/.local/state/physics-lens/archive",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads config from the standard path, falling back to defaults.
func Load() (Config, error) {
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	cfg := DefaultConfig()
	cfg.expand()
	return cfg, nil
}

// LoadFile reads config from path over the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.expand()
	return cfg, nil
}

// Path returns the config file Load would read, or the preferred location
// when none exists yet.
func Path() string {
	paths := configPaths()
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(ConfigDir(), "config.toml")
}

func configPaths() []string {
	var paths []string

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "physics-lens", "config.toml"))
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", "physics-lens", "config.toml"))
	}

	return paths
}

func (c *Config) expand() {
	c.IPC.Dir = expandHome(c.IPC.Dir)
	c.IPC.SQLite.Path = expandHome(c.IPC.SQLite.Path)
	c.Archive.Dir = expandHome(c.Archive.Dir)
	c.Patterns.File = expandHome(c.Patterns.File)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Validate reports every problem with c, joined.
func (c Config) Validate() error {
	var errs []error

	switch c.IPC.Transport {
	case TransportFile:
		if c.IPC.Dir == "" {
			errs = append(errs, errors.New("ipc.dir is required for the file transport"))
		}
	case TransportSQLite:
		if c.IPC.SQLite.Path == "" {
			errs = append(errs, errors.New("ipc.sqlite.path is required for the sqlite transport"))
		}
	case TransportRedis:
		if c.IPC.Redis.Addr == "" {
			errs = append(errs, errors.New("ipc.redis.addr is required for the redis transport"))
		}
		if c.IPC.Redis.TTLSeconds <= 0 {
			errs = append(errs, fmt.Errorf("ipc.redis.ttl_seconds must be positive, got %d", c.IPC.Redis.TTLSeconds))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown ipc.transport %q (want file, sqlite or redis)", c.IPC.Transport))
	}

	if c.IPC.PollIntervalMs <= 0 {
		errs = append(errs, fmt.Errorf("ipc.poll_interval_ms must be positive, got %d", c.IPC.PollIntervalMs))
	}
	if c.IPC.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("ipc.timeout_ms must be positive, got %d", c.IPC.TimeoutMs))
	}
	if len(c.IPC.ResponderTags) == 0 {
		errs = append(errs, errors.New("ipc.responder_tags must not be empty"))
	}
	for _, tag := range c.IPC.ResponderTags {
		if tag == "" || strings.ContainsAny(tag, `/\:`) {
			errs = append(errs, fmt.Errorf("invalid responder tag %q", tag))
		}
	}

	if c.Archive.Enabled && c.Archive.Dir == "" {
		errs = append(errs, errors.New("archive.dir is required when archiving is enabled"))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// PollInterval returns [ipc] poll_interval_ms as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.IPC.PollIntervalMs) * time.Millisecond
}

// Timeout returns [ipc] timeout_ms as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.IPC.TimeoutMs) * time.Millisecond
}

// RedisTTL returns [ipc.redis] ttl_seconds as a duration.
func (c Config) RedisTTL() time.Duration {
	return time.Duration(c.IPC.Redis.TTLSeconds) * time.Second
}

// RequestsDir returns the file transport's requests directory.
func (c Config) RequestsDir() string {
	return filepath.Join(c.IPC.Dir, "requests")
}

// ResponsesDir returns the file transport's responses directory.
func (c Config) ResponsesDir() string {
	return filepath.Join(c.IPC.Dir, "responses")
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the physics-lens config directory path.
// Uses $XDG_CONFIG_HOME/physics-lens if set, otherwise ~/.config/physics-lens.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "physics-lens")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "physics-lens")
}

// WriteDefault writes a starter config.toml whose IPC directory is ipcDir
// (the default when empty). Returns the config file path and "created", or
// "exists" when a config file is already present and left untouched.
func WriteDefault(ipcDir string) (string, string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	if _, err := os.Stat(path); err == nil {
		return path, "exists", nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	def := DefaultConfig()
	if ipcDir == "" {
		ipcDir = def.IPC.Dir
	}

	content := fmt.Sprintf(`[ipc]
transport = "file"           # file, sqlite or redis
dir = %q
poll_interval_ms = %d
timeout_ms = %d
responder_tags = ["lens", "anchor"]

[ipc.sqlite]
path = %q

[ipc.redis]
addr = %q
password = ""
db = 0
prefix = %q
ttl_seconds = %d

[archive]
enabled = false
dir = %q

[patterns]
# file = "~/.config/physics-lens/patterns.yaml"

[log]
level = "info"
json = false
`,
		CompressHome(ipcDir),
		def.IPC.PollIntervalMs,
		def.IPC.TimeoutMs,
		def.IPC.SQLite.Path,
		def.IPC.Redis.Addr,
		def.IPC.Redis.Prefix,
		def.IPC.Redis.TTLSeconds,
		def.Archive.Dir,
	)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, "created", nil
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}

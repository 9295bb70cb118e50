package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/suykerbuyk/physics-lens/internal/archive"
	"github.com/suykerbuyk/physics-lens/internal/config"
	"github.com/suykerbuyk/physics-lens/internal/ipc"
	"github.com/suykerbuyk/physics-lens/internal/patterns"
)

// StaleAfter is the age at which a pending request is reported as stale.
const StaleAfter = 5 * time.Minute

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "lens check\n\n  no checks ran\n"
	}

	// Find max name length for alignment.
	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("lens check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports the resolved config path. Broken TOML is caught when
// the config is loaded, before any check runs.
func CheckConfig(cfgPath string) Result {
	if _, err := os.Stat(cfgPath); err != nil {
		return Result{Name: "config", Status: Pass, Detail: "defaults (no " + config.CompressHome(cfgPath) + ")"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(cfgPath)}
}

// CheckConfigValid runs config validation.
func CheckConfigValid(cfg config.Config) Result {
	if err := cfg.Validate(); err != nil {
		return Result{Name: "settings", Status: Fail, Detail: strings.ReplaceAll(err.Error(), "\n", "; ")}
	}
	return Result{Name: "settings", Status: Pass, Detail: fmt.Sprintf("transport %s, timeout %s", cfg.IPC.Transport, cfg.Timeout())}
}

// CheckIPCDir checks that the file transport directory exists and accepts
// writes.
func CheckIPCDir(dir string) Result {
	info, err := os.Stat(dir)
	if err != nil {
		return Result{Name: "ipc-dir", Status: Warn, Detail: config.CompressHome(dir) + " not found (created on first request)"}
	}
	if !info.IsDir() {
		return Result{Name: "ipc-dir", Status: Fail, Detail: config.CompressHome(dir) + " is not a directory"}
	}
	tmp, err := os.CreateTemp(dir, ".lens-check-*")
	if err != nil {
		return Result{Name: "ipc-dir", Status: Fail, Detail: config.CompressHome(dir) + " not writable"}
	}
	tmp.Close()
	os.Remove(tmp.Name())
	return Result{Name: "ipc-dir", Status: Pass, Detail: config.CompressHome(dir)}
}

// CheckPending counts request files and warns when any is older than
// staleAfter, which usually means no responder is running.
func CheckPending(requestsDir string, now time.Time, staleAfter time.Duration) Result {
	entries, err := os.ReadDir(requestsDir)
	if err != nil {
		return Result{Name: "pending", Status: Pass, Detail: "no requests directory yet"}
	}

	var total, stale int
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		total++
		if info, err := e.Info(); err == nil && now.Sub(info.ModTime()) > staleAfter {
			stale++
		}
	}

	if stale > 0 {
		return Result{Name: "pending", Status: Warn, Detail: fmt.Sprintf("%d of %d requests older than %s (is a responder running?)", stale, total, staleAfter)}
	}
	return Result{Name: "pending", Status: Pass, Detail: fmt.Sprintf("%d requests", total)}
}

// CheckOrphans warns about response files whose request is gone.
func CheckOrphans(requestsDir, responsesDir string) Result {
	entries, err := os.ReadDir(responsesDir)
	if err != nil {
		return Result{Name: "responses", Status: Pass, Detail: "no responses directory yet"}
	}

	orphans := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		_, id, ok := strings.Cut(strings.TrimSuffix(name, ".json"), "-")
		if !ok {
			continue
		}
		if _, err := os.Stat(filepath.Join(requestsDir, id+".json")); err != nil {
			orphans++
		}
	}

	if orphans > 0 {
		return Result{Name: "responses", Status: Warn, Detail: fmt.Sprintf("%d orphaned responses", orphans)}
	}
	return Result{Name: "responses", Status: Pass, Detail: "no orphans"}
}

// CheckSQLite opens the transport database, creating tables if needed.
func CheckSQLite(path string) Result {
	tr, err := ipc.OpenSQLite(path)
	if err != nil {
		return Result{Name: "sqlite", Status: Fail, Detail: err.Error()}
	}
	tr.Close()
	return Result{Name: "sqlite", Status: Pass, Detail: config.CompressHome(path)}
}

// CheckRedis pings the configured server.
func CheckRedis(ctx context.Context, rc config.RedisConfig) Result {
	client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return Result{Name: "redis", Status: Fail, Detail: fmt.Sprintf("%s unreachable: %v", rc.Addr, err)}
	}
	return Result{Name: "redis", Status: Pass, Detail: rc.Addr}
}

// CheckPatterns loads the custom pattern file, if any.
func CheckPatterns(file string) Result {
	builtin := len(patterns.Builtin())
	if file == "" {
		return Result{Name: "patterns", Status: Pass, Detail: fmt.Sprintf("%d built-in", builtin)}
	}
	custom, err := patterns.LoadFile(file)
	if err != nil {
		return Result{Name: "patterns", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "patterns", Status: Pass, Detail: fmt.Sprintf("%d built-in, %d from %s", builtin, len(custom), config.CompressHome(file))}
}

// CheckArchive reports the exchange archive state.
func CheckArchive(acfg config.ArchiveConfig) Result {
	if !acfg.Enabled {
		return Result{Name: "archive", Status: Pass, Detail: "disabled"}
	}
	if info, err := os.Stat(acfg.Dir); err != nil || !info.IsDir() {
		return Result{Name: "archive", Status: Warn, Detail: config.CompressHome(acfg.Dir) + " not found (created on first exchange)"}
	}
	ids, err := archive.NewStore(acfg.Dir).List()
	if err != nil {
		return Result{Name: "archive", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "archive", Status: Pass, Detail: fmt.Sprintf("%s (%d exchanges)", config.CompressHome(acfg.Dir), len(ids))}
}

// Run executes all checks against the given config and returns a report.
func Run(ctx context.Context, cfg config.Config) Report {
	var results []Result

	results = append(results, CheckConfig(config.Path()))
	results = append(results, CheckConfigValid(cfg))

	switch cfg.IPC.Transport {
	case config.TransportFile:
		results = append(results, CheckIPCDir(cfg.IPC.Dir))
		results = append(results, CheckPending(cfg.RequestsDir(), time.Now(), StaleAfter))
		results = append(results, CheckOrphans(cfg.RequestsDir(), cfg.ResponsesDir()))
	case config.TransportSQLite:
		results = append(results, CheckSQLite(cfg.IPC.SQLite.Path))
	case config.TransportRedis:
		results = append(results, CheckRedis(ctx, cfg.IPC.Redis))
	}

	results = append(results, CheckPatterns(cfg.Patterns.File))
	results = append(results, CheckArchive(cfg.Archive))

	return Report{Results: results}
}

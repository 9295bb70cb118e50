package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/suykerbuyk/physics-lens/internal/archive"
	"github.com/suykerbuyk/physics-lens/internal/config"
	"github.com/suykerbuyk/physics-lens/internal/ipc"
)

// openTransport builds the configured transport. The returned close func
// releases any connection it holds.
func openTransport(cfg config.Config) (ipc.Transport, func() error, error) {
	noop := func() error { return nil }
	tags := cfg.IPC.ResponderTags

	switch cfg.IPC.Transport {
	case config.TransportFile:
		t, err := ipc.NewFileTransport(cfg.IPC.Dir, ipc.WithResponderTags(tags...))
		if err != nil {
			return nil, nil, err
		}
		return t, noop, nil

	case config.TransportSQLite:
		t, err := ipc.OpenSQLite(cfg.IPC.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return t, t.Close, nil

	case config.TransportRedis:
		rc := cfg.IPC.Redis
		client := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		t := ipc.NewRedisTransport(client,
			ipc.WithRedisPrefix(rc.Prefix),
			ipc.WithRedisTTL(cfg.RedisTTL()),
			ipc.WithRedisResponderTags(tags...),
		)
		return t, client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown ipc transport %q", cfg.IPC.Transport)
	}
}

// channel opens the transport and wraps it in a Channel with logging,
// metrics and, when enabled, archiving.
func (a *app) channel(reg prometheus.Registerer) (*ipc.Channel, func() error, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	t, closeFn, err := openTransport(a.cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s transport: %w", a.cfg.IPC.Transport, err)
	}

	opts := []ipc.Option{
		ipc.WithPollInterval(a.cfg.PollInterval()),
		ipc.WithTimeout(a.cfg.Timeout()),
		ipc.WithLogger(a.logger.Named("ipc")),
		ipc.WithMetrics(ipc.NewMetrics(reg)),
	}
	if a.cfg.Archive.Enabled {
		opts = append(opts, ipc.WithArchiver(archive.NewStore(a.cfg.Archive.Dir)))
	}

	a.logger.Debug("channel ready",
		zap.String("transport", a.cfg.IPC.Transport),
		zap.Duration("timeout", a.cfg.Timeout()),
		zap.Bool("archive", a.cfg.Archive.Enabled),
	)
	return ipc.NewChannel(t, opts...), closeFn, nil
}

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/interview-engine/internal/config"
	"github.com/danielpatrickdp/interview-engine/internal/generator"
	"github.com/danielpatrickdp/interview-engine/internal/interview"
	"github.com/danielpatrickdp/interview-engine/internal/logging"
	"github.com/danielpatrickdp/interview-engine/internal/metrics"
	"github.com/danielpatrickdp/interview-engine/internal/qcache"
	"github.com/danielpatrickdp/interview-engine/internal/transcript"
)

// #region app
// app holds everything one command needs. Fields are nil when the command
// did not ask for them.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	store    *transcript.Store
	turns    *logging.TurnLog
	registry *prometheus.Registry
	engine   *interview.Engine

	closers []func() error
}

type appOptions struct {
	store bool                                    // open the transcript database
	tune  func(interview.Config) interview.Config // per-run engine overrides
}

// openApp loads configuration and wires the engine. The caller must Close.
func openApp(ctx context.Context, stderr io.Writer, opts appOptions) (*app, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if cfg.Logging.Console == nil {
		cfg.Logging.Console = stderr
	}

	a := &app{cfg: cfg, registry: prometheus.NewRegistry()}
	if a.log, err = logging.New(cfg.Logging); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { _ = a.log.Sync(); return nil })

	engineOpts := []interview.Option{
		interview.WithLogger(a.log),
		interview.WithObserver(metrics.NewRecorder(a.registry)),
	}

	if opts.store {
		if a.store, err = transcript.NewStore(cfg.DBPath); err != nil {
			a.Close()
			return nil, fmt.Errorf("open store: %w", err)
		}
		a.closers = append(a.closers, a.store.Close)
		if a.turns, err = logging.NewTurnLog(a.store.DB()); err != nil {
			a.Close()
			return nil, err
		}
		engineOpts = append(engineOpts, interview.WithPatternMemo(a.store))
	}

	local := qcache.New(cfg.Cache)
	var cache interview.Cache = local
	if cfg.RedisURL != "" {
		rdb := qcache.NewRedisClient(cfg.RedisURL)
		a.closers = append(a.closers, rdb.Close)
		remote := qcache.NewRedisStore(rdb, cfg.Cache.TTL, a.log)
		if err := remote.Ping(ctx); err != nil {
			a.log.Warn("redis unavailable, cache stays local until it recovers", zap.Error(err))
		}
		cache = qcache.NewTiered(local, remote)
	}

	gen, err := generator.New(cfg.Generator)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create generator: %w", err)
	}
	if c, ok := gen.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}
	if gen == nil {
		a.log.Info("no generator configured, non-scripted turns use fallback questions")
	}

	engineCfg := cfg.Engine
	if opts.tune != nil {
		engineCfg = opts.tune(engineCfg)
	}
	a.engine = interview.NewEngine(engineCfg, gen, cache, engineOpts...)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
	a.closers = nil
}
// #endregion app

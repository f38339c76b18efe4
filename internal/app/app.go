// Package app wires the bot together: config, logging, storage, the
// Telegram adapter, the pin scheduler and the command router. One App is
// constructed per process; there are no package-level singletons.
package app

import (
	"context"
	"fmt"
	"time"

	"pinbot/internal/config"
	"pinbot/internal/pin"
	rtsup "pinbot/internal/runtime/supervisor"
	"pinbot/internal/storage"
	kit "pinbot/internal/transport"
	"pinbot/internal/transport/telegram"
	"pinbot/internal/transport/telegram/router"
	logx "pinbot/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	store   storage.Store
	adapter *telegram.Adapter
	svc     *pin.Service
	router  *router.Router

	sup     *rtsup.Supervisor
	updates chan kit.Update
}

func New(cfgPath string) (*App, error) {
	bootLog := logx.NewConsole("info")

	cfgm := config.NewManager(cfgPath, bootLog.With(logx.String("comp", "config")))
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logs := logx.NewService(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log := logs.Logger()

	busyTimeout, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "storage")))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	pollTimeout, err := config.ParseDurationOrDefault("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
		RatePerSec:  cfg.Telegram.RatePerSec,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("telegram adapter: %w", err)
	}

	loc := time.Local
	if tz := cfg.Pin.Timezone; tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Warn("invalid timezone; falling back to Local", logx.String("tz", tz), logx.Err(err))
		} else {
			loc = l
		}
	}
	fireTimeout, err := config.ParseDurationField("pin.fire_timeout", cfg.Pin.FireTimeout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	exec := pin.NewExecutor(adapter, fireTimeout, log.With(logx.String("comp", "executor")))
	svc := pin.NewService(store, pin.NewCron(loc), exec, log.With(logx.String("comp", "pin")))
	rt := router.New(adapter, svc, store, cfg.Telegram.OwnerUserIDs, log.With(logx.String("comp", "router")))

	return &App{
		cfgm:    cfgm,
		logs:    logs,
		log:     log.With(logx.String("comp", "app")),
		store:   store,
		adapter: adapter,
		svc:     svc,
		router:  rt,
		updates: make(chan kit.Update, 256),
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	a.sup = rtsup.New(ctx,
		rtsup.WithLogger(a.log),
		rtsup.WithCancelOnError(true),
	)

	if err := a.adapter.Start(a.sup.Context(), a.updates); err != nil {
		return fmt.Errorf("start telegram: %w", err)
	}

	// Rehydrate tasks and register jobs before commands can mutate them.
	a.svc.Start(a.sup.Context())

	a.sup.Go("router", func(c context.Context) error {
		a.router.Run(c, a.updates)
		return nil
	})
	a.sup.Go("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	})
	a.sup.Go("config.apply", func(c context.Context) error {
		sub := a.cfgm.Subscribe(1)
		for {
			select {
			case <-c.Done():
				return nil
			case cfg := <-sub:
				a.applyConfig(cfg)
			}
		}
	})

	a.log.Info("started")
	return nil
}

// applyConfig re-applies the hot-reloadable subset (log sinks/level).
// Token, storage driver and schedules need a restart.
func (a *App) applyConfig(cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	a.log.Info("logging config applied", logx.String("level", cfg.Logging.Level))
}

// Done is closed when the supervisor context ends (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Stop(ctx context.Context) error {
	a.log.Info("stopping")
	if a.sup != nil {
		a.sup.Cancel()
	}

	// Cancel all jobs and wait for in-flight firings before the store goes.
	a.svc.Stop()
	_ = a.adapter.Stop(ctx)

	if a.sup != nil {
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = a.sup.Wait(wctx)
	}

	if err := a.store.Close(); err != nil {
		a.log.Warn("storage close failed", logx.Err(err))
	}
	_ = a.logs.Close()
	return nil
}

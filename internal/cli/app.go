package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/sadopc/trainr/internal/catalog"
	"github.com/sadopc/trainr/internal/config"
	"github.com/sadopc/trainr/internal/kv"
	"github.com/sadopc/trainr/internal/logging"
	"github.com/sadopc/trainr/internal/service"
	"github.com/sadopc/trainr/internal/store"
)

const pingTimeout = 3 * time.Second

// app is everything a command needs, opened from config.
type app struct {
	cfg     *config.Config
	svc     *service.Service
	closers []func()
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath, true)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path, false)
}

// openApp loads config, sets up logging, opens the configured backend and loads the service.
// interactive keeps log output off stdout, which belongs to the TUI.
func openApp(ctx context.Context, interactive bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	flush, err := logging.Setup(logging.Params{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout && !interactive,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
		Environment:   cfg.Sentry.Environment,
		SentryEnabled: cfg.Sentry.Enabled,
		SentryDSN:     cfg.Sentry.DSN,
		Release:       "trainr@" + version,
	})
	a.closers = append(a.closers, flush)
	if err != nil {
		a.close()
		return nil, err
	}

	backend, settings, err := a.openBackend(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	if cfg.Store.CacheSizeMB > 0 {
		cached := kv.NewCached(backend, cfg.Store.CacheSizeMB)
		a.closers = append(a.closers, func() {
			log.Debugf("kv cache hit rate %.2f", cached.HitRate())
		})
		backend = cached
	}

	cat, err := catalog.Default()
	if err != nil {
		a.close()
		return nil, err
	}

	a.svc = service.New(service.Deps{
		Catalog:      cat,
		KV:           backend,
		Settings:     settings,
		HistoryLimit: cfg.Program.HistoryRetention,
	})
	if err := a.svc.Load(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("load progress: %w", err)
	}
	a.closers = append(a.closers, a.svc.Shutdown)
	return a, nil
}

func (a *app) openBackend(ctx context.Context) (kv.Store, service.Settings, error) {
	switch a.cfg.Store.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Store.RedisAddr,
			Password: a.cfg.Store.RedisPassword,
			DB:       a.cfg.Store.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", a.cfg.Store.RedisAddr, err)
		}
		r := kv.NewRedis(client, a.cfg.Store.RedisPrefix)
		a.closers = append(a.closers, func() {
			if err := r.Close(); err != nil {
				log.Warnf("close redis: %s", err)
			}
		})
		log.Infof("using redis backend at %s", a.cfg.Store.RedisAddr)
		return r, kv.NewSettings(r), nil

	default:
		s, err := store.New(a.cfg.Store.DBPath)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, func() {
			if err := s.Close(); err != nil {
				log.Warnf("close database: %s", err)
			}
		})
		log.Infof("using sqlite backend at %s", a.cfg.Store.DBPath)
		if all, err := s.GetAllSettings(); err == nil {
			for _, st := range all {
				log.WithField("key", st.Key).Debugf("setting = %q", st.Value)
			}
		}
		return s, s, nil
	}
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

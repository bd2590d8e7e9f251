package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/notechain-go/internal/core/service"
	"github.com/yndnr/notechain-go/internal/infra/buildinfo"
	"github.com/yndnr/notechain-go/internal/infra/confloader"
	"github.com/yndnr/notechain-go/internal/infra/shutdown"
	"github.com/yndnr/notechain-go/internal/infra/tlsroots"
	"github.com/yndnr/notechain-go/internal/server/config"
	"github.com/yndnr/notechain-go/internal/server/httpserver"
	"github.com/yndnr/notechain-go/internal/server/localserver"
	"github.com/yndnr/notechain-go/internal/storage"
	"github.com/yndnr/notechain-go/internal/storage/stable"
	"github.com/yndnr/notechain-go/internal/telemetry/logger"
	"github.com/yndnr/notechain-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("notechain-server %s\n", buildinfo.String())
		return nil
	}

	cfg, loader, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogLogger := log.Slog()

	log.Info("starting notechain-server", buildinfo.LogAttrs()...)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	if *configFile != "" {
		watcher, err := watchLogLevel(*configFile, loader, slogLogger)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	metrics := metric.NewRegistry()

	medium, err := openMedium(cfg, metrics, slogLogger)
	if err != nil {
		return fmt.Errorf("open stable medium: %w", err)
	}

	engine, err := storage.New(storage.Config{
		Medium:  medium,
		Metrics: metrics,
		Logger:  slogLogger,
	})
	if err != nil {
		medium.Close()
		return fmt.Errorf("init storage: %w", err)
	}

	ctx := context.Background()
	restored := engine.OnPostRestart(ctx)
	if restored.Err != nil {
		log.Warn("started from an empty table", "error", restored.Err)
	}

	notes := service.NewNoteService(engine.Table(), service.WithMetrics(metrics))

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.NoteService = notes
	routerCfg.Ready = engine
	routerCfg.Logger = slogLogger
	routerCfg.AllowAnonymous = cfg.Server.HTTP.AllowAnonymous
	routerCfg.RateLimit = cfg.Server.HTTP.RateLimit
	routerCfg.CORSAllowedOrigins = cfg.Server.HTTP.CORSAllowedOrigins
	if cfg.Server.HTTP.MetricsEnabled {
		routerCfg.Metrics = metrics
	}

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, httpserver.NewRouter(routerCfg))

	var certWatcher *tlsroots.Watcher
	if cfg.Server.HTTP.TLSCertFile != "" {
		certWatcher, err = tlsroots.NewWatcher(cfg.Server.HTTP.TLSCertFile, cfg.Server.HTTP.TLSKeyFile,
			tlsroots.WithLogger(slogLogger))
		if err != nil {
			engine.Close()
			return fmt.Errorf("load tls certificate: %w", err)
		}
		if err := certWatcher.Start(); err != nil {
			log.Warn("certificate reload disabled", "error", err)
		}
		defer certWatcher.Stop()
	}

	// Hooks run in reverse: stop HTTP, snapshot the table, close the medium.
	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownTimeout)
	shutdownHandler.OnShutdown("storage", func(ctx context.Context) error {
		log.Info("closing stable medium")
		return engine.Close()
	})
	shutdownHandler.OnShutdown("snapshot", func(ctx context.Context) error {
		report := engine.OnPreRestart(ctx)
		log.Info("pre-restart hook finished",
			"notes", report.Notes,
			"next_id", report.NextID,
			"duration_ms", report.Elapsed.Milliseconds(),
			"ok", report.Err == nil)
		return nil
	})
	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return httpServer.Shutdown(ctx)
	})

	if path := cfg.Server.Local.SocketPath; path != "" {
		admin := localserver.New(path, adminHandler(cfg, engine, loader, shutdownHandler.Trigger, slogLogger), slogLogger)
		if err := admin.Listen(); err != nil {
			log.Warn("admin socket disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("admin", admin.Shutdown)
			go func() {
				log.Info("admin socket listening", "path", path)
				if err := admin.Serve(); err != nil {
					log.Error("admin socket error", "error", err)
				}
			}()
		}
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTP.Addr)

		var err error
		if certWatcher != nil {
			err = httpServer.ListenAndServeTLS(certWatcher.ServerConfig())
		} else {
			err = httpServer.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// openMedium builds the configured stable medium, sealed when a key or
// passphrase is set.
func openMedium(cfg *config.ServerConfig, metrics *metric.Registry, log *slog.Logger) (stable.Medium, error) {
	var medium stable.Medium

	switch cfg.Storage.Backend {
	case config.BackendBadger:
		badgerCfg := stable.DefaultBadgerConfig(cfg.Storage.DataDir)
		badgerCfg.GCInterval = cfg.Storage.Badger.GCInterval
		badgerCfg.SyncWrites = cfg.Storage.Badger.SyncWrites
		bm, err := stable.NewBadgerMedium(badgerCfg, log)
		if err != nil {
			return nil, err
		}
		medium = bm.RegisterMetrics(metrics.Registerer())
	default:
		fm, err := stable.NewFileMedium(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		medium = fm
	}

	sealCfg, enabled, err := cfg.Security.SealConfig()
	if err != nil {
		medium.Close()
		return nil, err
	}
	if !enabled {
		return medium, nil
	}

	sealed, err := stable.NewSealedMedium(medium, sealCfg)
	if err != nil {
		medium.Close()
		return nil, err
	}
	log.Info("stable medium sealed", "backend", cfg.Storage.Backend)
	return sealed, nil
}

// watchLogLevel reloads the configuration when the file changes and
// applies the new log level. Other settings need a restart.
func watchLogLevel(path string, loader *confloader.Loader, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		if err := reloadLogLevel(loader, log); err != nil {
			log.Warn("config reload failed", "error", err)
		}
	})
	watcher.StartAsync()
	return watcher, nil
}

func reloadLogLevel(loader *confloader.Loader, log *slog.Logger) error {
	next := config.Default()
	if err := loader.Reload(next); err != nil {
		return err
	}
	if err := logger.SetLevel(next.Log.Level); err != nil {
		return err
	}
	log.Info("log level reloaded", "level", next.Log.Level)
	return nil
}

// adminHandler exposes the running server on the admin socket.
func adminHandler(cfg *config.ServerConfig, engine *storage.Engine, loader *confloader.Loader,
	trigger func(), log *slog.Logger) *localserver.Handler {
	started := time.Now()

	return &localserver.Handler{
		Status: func() any {
			return map[string]any{
				"version":        buildinfo.Version,
				"ready":          engine.Ready(),
				"notes":          engine.Table().Count(),
				"backend":        cfg.Storage.Backend,
				"uptime_seconds": int64(time.Since(started).Seconds()),
			}
		},
		Reload: func() error {
			return reloadLogLevel(loader, log)
		},
		Snapshot: func(ctx context.Context) (any, error) {
			report := engine.OnPreRestart(ctx)
			if report.Err != nil {
				return nil, report.Err
			}
			return map[string]any{
				"notes":       report.Notes,
				"next_id":     report.NextID,
				"duration_ms": report.Elapsed.Milliseconds(),
			}, nil
		},
		Shutdown: trigger,
	}
}

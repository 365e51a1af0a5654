// @title Parish Calendar API
// @version 1.0
// @description Expansión de eventos recurrentes y ad-hoc de ministerios parroquiales.
// @BasePath /
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parish-calendar/internal/adapters/auth/identity"
	"parish-calendar/internal/adapters/notify/logsink"
	"parish-calendar/internal/adapters/notify/webhook"
	mem "parish-calendar/internal/adapters/storage/memory"
	pg "parish-calendar/internal/adapters/storage/postgres"
	"parish-calendar/internal/config"
	"parish-calendar/internal/jobs/ruleaudit"
	"parish-calendar/internal/platform/logger"
	"parish-calendar/internal/ports/auth"
	"parish-calendar/internal/ports/notify"
	"parish-calendar/internal/router"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "ruta al archivo YAML de configuración")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.NewFromEnv().Error("load config failed", map[string]any{"error": err.Error(), "path": *configPath})
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		logger.NewFromEnv().Error("invalid environment", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.AppName,
	})

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	opts := router.Options{
		Logger:                 log,
		Location:               loc,
		MaxOccurrencesPerEvent: cfg.MaxOccurrencesPerEvent,
	}

	if cfg.DBDSN != "" {
		db, err := openDB(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.DB = db
	}

	if cfg.Auth.VerifyURL != "" {
		verifier, err := newVerifier(cfg)
		if err != nil {
			return err
		}
		opts.AuthVerifier = verifier
	} else {
		log.Warn("no identity service configured, accepting X-Debug-User-ID", nil)
	}

	svc := router.NewServices(opts)

	if opts.DB == nil && cfg.SeedFile != "" {
		seed, err := mem.LoadSeed(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(context.Background(), svc.Ministries, svc.Events); err != nil {
			return err
		}
		log.Info("seed loaded", map[string]any{"file": cfg.SeedFile, "events": len(seed.Events)})
	}

	if cfg.RuleAudit.Cron != "" {
		job := ruleaudit.New(svc.EventRepo, svc.Expander, notify.StaticAdmins(cfg.Admins), newNotifier(cfg, log), log)
		c, err := ruleaudit.Schedule(cfg.RuleAudit.Cron, loc, job, log)
		if err != nil {
			return err
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		log.Info("rule audit scheduled", map[string]any{"cron": cfg.RuleAudit.Cron, "admins": len(cfg.Admins)})
	}

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router.NewRouterWith(opts, svc),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Listen, "timezone": loc.String(), "postgres": opts.DB != nil})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := pg.Open(dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := pg.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newVerifier(cfg *config.Config) (auth.AuthVerifier, error) {
	client, err := identity.NewClient(identity.Config{
		BaseURL: cfg.Auth.VerifyURL,
		APIKey:  cfg.Auth.APIKey,
	})
	if err != nil {
		return nil, err
	}
	return identity.NewVerifier(client), nil
}

func newNotifier(cfg *config.Config, log logger.Logger) notify.Notifier {
	if cfg.Notify.WebhookURL == "" {
		return logsink.New(log)
	}
	n, err := webhook.New(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	if err != nil {
		log.Warn("webhook notifier disabled", map[string]any{"error": err.Error()})
		return logsink.New(log)
	}
	return n
}

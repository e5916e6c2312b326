// Package app wires configuration, adapters, and the pipeline into a
// running service.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dailybrief/internal/config"
	"dailybrief/internal/curator"
	"dailybrief/internal/generator"
	"dailybrief/internal/infrastructure/feed"
	"dailybrief/internal/infrastructure/llm"
	"dailybrief/internal/infrastructure/scheduler"
	"dailybrief/internal/infrastructure/smtp"
	"dailybrief/internal/infrastructure/storage"
	"dailybrief/internal/infrastructure/web"
	"dailybrief/internal/logging"
	"dailybrief/internal/ports"
	"dailybrief/internal/source"
	"dailybrief/internal/summarizer"
	"dailybrief/internal/usecase"
)

// App owns the long-lived components and their shutdown order.
type App struct {
	cfg      config.Config
	logger   *slog.Logger
	server   *web.Server
	trigger  ports.Trigger
	runBatch func(time.Time)
	closers  []func() error
}

// New assembles the service from configuration.
func New(cfg config.Config) (*App, error) {
	logger := logging.New(cfg.Logging.Level)
	a := &App{cfg: cfg, logger: logger}

	httpClient := &http.Client{Timeout: cfg.Fetch.Timeout}
	registry := source.NewRegistry()
	registry.Register(feed.NewFeedStrategy(httpClient, cfg.Fetch.FreshnessHours, cfg.Fetch.PerSourceLimit))
	registry.Register(feed.NewHeadlineStrategy(httpClient, cfg.Fetch.NewsAPIKey, cfg.Fetch.FreshnessHours, cfg.Fetch.PerSourceLimit))
	fetcher := feed.NewFetcher(registry, source.FromConfig(cfg.Sources), cfg.Fetch.Timeout,
		logger.With("component", "fetcher"))

	digests, directory, runs, err := a.buildStores()
	if err != nil {
		return nil, err
	}

	var synopsisClient ports.SynopsisClient
	if cfg.Anthropic.APIKey != "" {
		synopsisClient = llm.NewAnthropicClient(cfg.Anthropic)
	} else {
		logger.Warn("anthropic api key missing, digests will use excerpt fallbacks")
	}
	sum := summarizer.New(synopsisClient, cfg.Summarizer, logger.With("component", "summarizer"))

	gen, err := generator.New(cfg.Curator.TopStories)
	if err != nil {
		return nil, fmt.Errorf("build generator: %w", err)
	}

	transport, err := a.buildTransport()
	if err != nil {
		return nil, err
	}
	mailer := usecase.NewMailer(transport, cfg.SMTP, logger)

	location := cfg.Scheduler.Location()
	pipeline := usecase.NewPipeline(fetcher, curator.New(cfg.Curator), sum, gen, mailer,
		digests, cfg.Web.UnsubscribeURL, location, logger)
	dispatcher := usecase.NewDispatcher(pipeline, runs, directory, cfg.Scheduler.Workers, location, logger)

	trigger, err := scheduler.NewDaily(cfg.Scheduler.Hour, cfg.Scheduler.Minute, location, logger)
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}
	a.trigger = trigger

	a.server = web.New(cfg.Web.Addr, dispatcher, digests, logger)

	a.runBatch = func(at time.Time) {
		if err := dispatcher.RunBatch(context.Background(), at); err != nil {
			logger.Error("scheduled batch failed", "error", err)
		}
	}
	return a, nil
}

// Run starts the scheduler and serves HTTP until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.trigger.Start(ctx, a.runBatch); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.server.Start() }()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.trigger.Stop(shutdownCtx); err != nil {
		a.logger.Error("scheduler shutdown failed", "error", err)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown failed", "error", err)
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Error("close failed", "error", err)
		}
	}
	a.logger.Info("shutdown complete")
	return nil
}

// buildStores picks the persistence backends. Without a database DSN
// everything runs in memory, which only suits local development.
func (a *App) buildStores() (ports.DigestStore, ports.RecipientDirectory, ports.RunRecordStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.cfg.Database.DSN == "" {
		a.logger.Warn("no database configured, using in-memory stores")
		mem := storage.NewMemory()
		return mem, mem, mem, nil
	}

	pg, err := storage.NewPostgres(ctx, a.cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.closers = append(a.closers, pg.Close)

	var runs ports.RunRecordStore = pg
	switch a.cfg.Storage.RunRecords {
	case "", "postgres":
	case "memory":
		runs = storage.NewMemory()
	case "redis":
		rds, err := storage.NewRedis(ctx, a.cfg.Redis.URL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, rds.Close)
		runs = rds
	default:
		return nil, nil, nil, fmt.Errorf("unknown run record backend %q", a.cfg.Storage.RunRecords)
	}

	return pg, pg, runs, nil
}

// buildTransport returns the SMTP mailer, or a log-only transport when
// credentials are absent so local runs exercise the full pipeline.
func (a *App) buildTransport() (ports.MailTransport, error) {
	if a.cfg.SMTP.Username == "" || a.cfg.SMTP.Password == "" {
		a.logger.Warn("smtp credentials missing, deliveries will only be logged")
		return dryRunTransport{logger: a.logger}, nil
	}
	mailer, err := smtp.New(a.cfg.SMTP, a.logger)
	if err != nil {
		return nil, fmt.Errorf("build smtp transport: %w", err)
	}
	return mailer, nil
}

type dryRunTransport struct {
	logger *slog.Logger
}

func (d dryRunTransport) Send(ctx context.Context, msg ports.Message) error {
	d.logger.Info("dry-run delivery", "to", msg.To, "subject", msg.Subject)
	return nil
}

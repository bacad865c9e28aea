package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"OpinionDigest/internal/config"
	"OpinionDigest/internal/court"
	"OpinionDigest/internal/infrastructure/ledger"
	"OpinionDigest/internal/infrastructure/llm"
	"OpinionDigest/internal/infrastructure/mail"
	"OpinionDigest/internal/infrastructure/pdftext"
	"OpinionDigest/internal/infrastructure/scheduler"
	"OpinionDigest/internal/infrastructure/telegram"
	"OpinionDigest/internal/logging"
	"OpinionDigest/internal/ports"
	"OpinionDigest/internal/scanner"
	"OpinionDigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	ledger   *ledger.SQLiteLedger
	logger   *slog.Logger
}

// New builds a runnable application instance. Gmail credentials and the
// model API key are the only hard requirements; everything else degrades
// to a warning at run time.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	httpClient, err := mail.NewAuthenticatedClient(ctx, cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("gmail auth: %w", err)
	}
	gmail := mail.NewClient(httpClient, baseLogger.With("component", "gmail"))

	model, err := llm.NewOpenAIClient(cfg.OpenAI, baseLogger.With("component", "llm"))
	if err != nil {
		return nil, fmt.Errorf("model client: %w", err)
	}

	registry := scanner.NewRegistry()
	registry.Register(court.NewCAFCSite(nil, baseLogger.With("component", "court.cafc")))

	var caseLedger *ledger.SQLiteLedger
	var ledgerPort ports.CaseLedger
	if cfg.Storage.LedgerPath != "" {
		caseLedger, err = ledger.Open(cfg.Storage.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("case ledger: %w", err)
		}
		ledgerPort = caseLedger
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Registry:   registry,
		Sources:    cfg.Sources,
		Mail:       gmail,
		Fetcher:    court.NewFetcher(nil, baseLogger.With("component", "fetcher")),
		Extractor:  pdftext.NewExtractor(),
		Classifier: model,
		Summarizer: model,
		Digest:     mail.NewDigestSender(gmail, cfg.Gmail.DigestTo, cfg.Gmail.DigestBCC, baseLogger.With("component", "digest")),
		Notifier:   notifier,
		Ledger:     ledgerPort,
		PDFDir:     cfg.Storage.PDFDir,
		SummaryDir: cfg.Storage.SummaryDir,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, ledger: caseLedger, logger: baseLogger}, nil
}

// Run performs a single pipeline execution for the given date.
func (a *Application) Run(ctx context.Context, day time.Time, force bool) error {
	processed, err := a.pipeline.ProcessDay(ctx, day, force)
	if err != nil {
		return err
	}
	a.logger.Info("run finished", "date", day.Format("2006-01-02"), "processed", processed)
	return nil
}

// RunDaemon executes one run per day in the configured timezone until the
// context is cancelled.
func (a *Application) RunDaemon(ctx context.Context) error {
	sched := scheduler.NewDailyScheduler(0)
	loc := a.cfg.Scheduler.Location()

	if err := sched.Start(ctx, func(t time.Time) {
		if err := a.Run(ctx, t.In(loc), false); err != nil {
			a.logger.Error("scheduled run failed", "error", err)
		}
	}); err != nil {
		return err
	}

	<-ctx.Done()
	return sched.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.ledger != nil {
		return a.ledger.Close()
	}
	return nil
}

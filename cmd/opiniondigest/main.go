package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"OpinionDigest/internal/app"
	"OpinionDigest/internal/config"
	"OpinionDigest/internal/logging"
)

type options struct {
	Config string `short:"c" long:"config" env:"OPINION_DIGEST_CONFIG" description:"Path to YAML config file"`
	Date   string `short:"d" long:"date" description:"Date to process as YYYY-MM-DD (default: today)"`
	Force  bool   `short:"f" long:"force" description:"Reprocess even when summaries already exist"`
	Daemon bool   `long:"daemon" description:"Keep running and process once per day"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	cfg := config.Load(opts.Config)
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if opts.Daemon {
		if err := application.RunDaemon(ctx); err != nil {
			logger.Error("daemon stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	day := time.Now().In(cfg.Scheduler.Location())
	if opts.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", opts.Date, cfg.Scheduler.Location())
		if err != nil {
			logger.Error("invalid --date value", "value", opts.Date, "error", err)
			os.Exit(2)
		}
		day = parsed
	}

	if err := application.Run(ctx, day, opts.Force); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

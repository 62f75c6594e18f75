package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/borderops/ingestor/internal/batch"
	"github.com/borderops/ingestor/internal/config"
	"github.com/borderops/ingestor/internal/logging"
	"github.com/borderops/ingestor/internal/mailbox"
	"github.com/borderops/ingestor/internal/pipeline"
	"github.com/borderops/ingestor/internal/proposal"
	"github.com/borderops/ingestor/internal/storage"
	"github.com/borderops/ingestor/internal/templatestore"
	"github.com/borderops/ingestor/internal/validate"
	"github.com/borderops/ingestor/internal/webapi"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		log.Println("No .env file found, using environment variables")
	} else {
		log.Println("Loaded .env file (overwriting existing env vars)")
	}

	cfg := config.MustLoad()
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger := slog.Default()

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		logger.Info("connecting to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	ctx := context.Background()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("failed parsing database url", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("failed connecting to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed pinging database", "error", err)
		os.Exit(1)
	}

	store, err := storage.New(cfg.Ingest.StorageBasePath, pool)
	if err != nil {
		logger.Error("failed building file store", "error", err)
		os.Exit(1)
	}

	templates, err := templatestore.New(cfg.Ingest.TemplatesDir, pool, logger)
	if err != nil {
		logger.Error("failed building template store", "error", err)
		os.Exit(1)
	}
	if n, err := templates.LoadAllFromJSON(ctx); err != nil {
		logger.Warn("failed seeding templates from sidecar files", "error", err)
	} else if n > 0 {
		logger.Info("seeded templates from sidecar files", "count", n)
	}

	rules, err := validate.Load(cfg.Ingest.RulesPath)
	if err != nil {
		logger.Warn("failed loading validation rules, using defaults", "path", cfg.Ingest.RulesPath, "error", err)
		rules = validate.Default()
	}

	var proposalOpts []proposal.Option
	if cfg.LLM.UseAISuggestions && cfg.LLM.OpenRouterAPIKey != "" {
		proposalOpts = append(proposalOpts, proposal.WithLLM(cfg.LLM.OpenRouterAPIKey, cfg.LLM.OpenRouterModel, cfg.LLM.Timeout))
	}
	proposals, err := proposal.New(cfg.Ingest.ReportsDir, logger, proposalOpts...)
	if err != nil {
		logger.Error("failed building proposal generator", "error", err)
		os.Exit(1)
	}

	limiter := pipeline.NewProcessingLimiter(cfg.Ingest.MaxConcurrentProcessing, cfg.Ingest.ProcessingWaitTime)
	pl := pipeline.New(pool, templates, proposals, rules, cfg.Ingest.ReportsDir, limiter, logger)
	batchProcessor := batch.New(pool, pl, cfg.Ingest.BatchPoolSize, logger)

	jobCtx, cancelJobs := context.WithCancel(context.Background())

	if cfg.Mailbox.Enabled {
		poller := mailbox.New(mailbox.Config{
			Host:                 cfg.Mailbox.IMAPHost,
			Port:                 cfg.Mailbox.IMAPPort,
			Username:             cfg.Mailbox.IMAPUsername,
			Password:             cfg.Mailbox.IMAPPassword,
			OAuthToken:           cfg.Mailbox.IMAPOAuthToken,
			Folder:               cfg.Mailbox.Folder,
			AttachmentExtensions: cfg.Mailbox.AttachmentExtensions,
			ConnectTimeout:       cfg.Mailbox.ConnectTimeout,
		}, store, logger)

		go runMailboxPoller(jobCtx, poller, cfg.Mailbox.PollingInterval, logger)
	}

	go runBatchProcessor(jobCtx, batchProcessor, cfg.Ingest.BatchPollInterval, logger)

	server := webapi.New(webapi.Deps{
		Pool:      pool,
		Storage:   store,
		Templates: templates,
		Pipeline:  pl,
		Batch:     batchProcessor,
		Rules:     rules,
		Security:  &cfg.Security,
		Log:       logger,
	})

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutdown signal received")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err)
		}
	}()

	logger.Info("starting server", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout); err != nil {
		logger.Info("server stopped", "error", err)
	}
}

// runMailboxPoller polls the configured mailbox on a fixed interval until
// ctx is cancelled, logging each run's outcome. It runs immediately on
// start, then every interval, mirroring the teacher's scheduler loop shape.
func runMailboxPoller(ctx context.Context, poller *mailbox.Poller, interval time.Duration, log *slog.Logger) {
	runOnce := func() {
		result, err := poller.Poll(ctx)
		if err != nil {
			log.Error("mailbox poll failed", "error", err)
			return
		}
		log.Info("mailbox poll complete",
			"processed", result.Processed,
			"duplicate", result.Duplicate,
			"failed", result.Failed,
			"marked_seen", result.EmailsMarkedSeen,
		)
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("mailbox poller stopped")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

// runBatchProcessor drives the batch processor on a fixed interval until ctx
// is cancelled, the scheduled counterpart to the files the mailbox poller
// and web uploads leave in `received` state.
func runBatchProcessor(ctx context.Context, processor *batch.Processor, interval time.Duration, log *slog.Logger) {
	runOnce := func() {
		results, err := processor.Run(ctx)
		if err != nil {
			log.Error("batch run failed", "error", err)
			return
		}
		if len(results) == 0 {
			return
		}

		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		log.Info("batch run complete", "files", len(results), "failed", failed)
	}

	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("batch processor stopped")
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

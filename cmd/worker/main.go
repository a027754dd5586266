package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/intervue-api/internal/config"
	"github.com/noah-isme/intervue-api/internal/database"
	"github.com/noah-isme/intervue-api/internal/repository"
	"github.com/noah-isme/intervue-api/internal/service"
	"github.com/noah-isme/intervue-api/pkg/ai"
)

// The worker drains one batch of pending evaluation jobs and exits. It is
// intended to run on a schedule (cron or similar) alongside the API.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "intervue-worker").Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	mistral, err := ai.NewMistralEvaluator(ai.MistralConfig{
		APIKey:    cfg.MistralAPIKey,
		BaseURL:   cfg.MistralBaseURL,
		Model:     cfg.MistralModel,
		MaxTokens: cfg.MistralMaxTokens,
		Logger:    logger,
	})
	if err != nil {
		log.Fatalf("failed to create mistral evaluator: %v", err)
	}
	evaluator := ai.NewRetryingEvaluator(mistral, ai.RetryConfig{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	}, logger)

	events := service.NewEvaluationEventPublisher(natsConn, "", logger)
	queue := service.NewQueueService(
		repository.NewEvaluationJobRepository(db),
		repository.NewEvaluationRepository(db),
		repository.NewFinalReportRepository(db),
		evaluator,
		events,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	summary, err := queue.ProcessPending(ctx, cfg.QueueBatchSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("queue run failed")
	}

	logger.Info().
		Int("fetched", summary.Fetched).
		Int("processed", summary.Processed).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("queue run complete")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/intervue-api/internal/config"
	"github.com/noah-isme/intervue-api/internal/database"
	"github.com/noah-isme/intervue-api/internal/handler"
	"github.com/noah-isme/intervue-api/internal/middleware"
	"github.com/noah-isme/intervue-api/internal/models"
	"github.com/noah-isme/intervue-api/internal/repository"
	"github.com/noah-isme/intervue-api/internal/router"
	"github.com/noah-isme/intervue-api/internal/service"
	"github.com/noah-isme/intervue-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Question{},
		&models.Response{},
		&models.Evaluation{},
		&models.EvaluationJob{},
		&models.FinalReport{},
		&models.Resume{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional; the API degrades to uncached reads and
	// skipped event publishing when they are absent.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	reportRepo := repository.NewFinalReportRepository(db)
	jobRepo := repository.NewEvaluationJobRepository(db)
	resumeRepo := repository.NewResumeRepository(db)

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

	questionService := service.NewQuestionService(questionRepo, redisClient, cfg.QuestionCacheTTL, logger)
	evaluationService := service.NewEvaluationService(
		questionService,
		responseRepo,
		evaluationRepo,
		reportRepo,
		jobRepo,
		resumeRepo,
		evaluator,
		events,
		validate,
		logger,
	)

	interviewHandler := handler.NewInterviewHandler(evaluationService, questionService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		InterviewHandler: interviewHandler,
		SubmitLimiter:    middleware.RateLimit("submit", cfg.SubmitRateLimit, cfg.SubmitRateWindow),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

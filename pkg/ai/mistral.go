package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "intervue",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of grading model requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "intervue",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of grading model failures",
	}, []string{"model"})
)

// DefaultMistralBaseURL is the OpenAI-compatible Mistral chat endpoint.
const DefaultMistralBaseURL = "https://api.mistral.ai/v1"

// MistralConfig defines configuration options for the Mistral evaluator.
type MistralConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// MistralEvaluator implements Evaluator against the Mistral chat completion
// API through its OpenAI-compatible surface.
type MistralEvaluator struct {
	client *openai.Client
	cfg    MistralConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewMistralEvaluator builds an evaluator using the provided configuration.
func NewMistralEvaluator(cfg MistralConfig) (*MistralEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mistral api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultMistralBaseURL
	}

	if cfg.Model == "" {
		cfg.Model = "mistral-large-latest"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}

	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL
	client := openai.NewClientWithConfig(clientConfig)

	return &MistralEvaluator{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/intervue-api/pkg/ai/mistral"),
		logger: logger,
	}, nil
}

// Evaluate performs a single grading call and parses the response. Transport
// errors, empty completions, and parse failures are all returned as errors so
// the retry wrapper re-invokes the full call.
func (e *MistralEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationResult, error) {
	ctx, span := e.tracer.Start(parent, "mistral.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.String("tech_stack", input.TechStack),
		attribute.Int("free_text_answers", len(input.Answers)),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: evaluatorSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	aiDuration.WithLabelValues(e.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, fmt.Errorf("mistral evaluate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from mistral")
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := ParseEvaluation(content)
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	span.SetAttributes(attribute.Float64("overall_score", result.OverallScore))
	return result, nil
}

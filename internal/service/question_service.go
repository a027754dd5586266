package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/intervue-api/internal/models"
	"github.com/noah-isme/intervue-api/internal/repository"
)

// QuestionService exposes read access to the question bank with a Redis
// cache in front, since every submission re-reads the same stack's questions.
type QuestionService interface {
	GetQuestions(ctx context.Context, techStack, questionType string) ([]models.Question, error)
	ListTechStacks(ctx context.Context) ([]string, error)
}

type questionService struct {
	repo     repository.QuestionRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewQuestionService builds the cached question reader. A nil cache client
// degrades to direct repository reads.
func NewQuestionService(repo repository.QuestionRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) QuestionService {
	return &questionService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "question_service").Logger(),
	}
}

func (s *questionService) GetQuestions(ctx context.Context, techStack, questionType string) ([]models.Question, error) {
	cacheKey := fmt.Sprintf("questions:%s:%s", techStack, questionType)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var questions []models.Question
			if unmarshalErr := json.Unmarshal([]byte(cached), &questions); unmarshalErr == nil {
				s.logger.Debug().Str("tech_stack", techStack).Msg("question cache hit")
				return questions, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read question cache")
		}
	}

	questions, err := s.repo.ListByTechStack(ctx, techStack, questionType)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(questions); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store question cache")
			}
		}
	}

	return questions, nil
}

func (s *questionService) ListTechStacks(ctx context.Context) ([]string, error) {
	return s.repo.ListTechStacks(ctx)
}

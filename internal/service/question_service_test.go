package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervue-api/internal/models"
	"github.com/noah-isme/intervue-api/internal/repository"
)

func TestQuestionServiceCachesPerStackAndType(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := setupServiceTestDB(t)
	require.NoError(t, db.Create(&[]models.Question{
		{TechStack: "Go", Type: models.QuestionTypeMCQ, Text: "What is a channel?", CorrectAnswer: "A"},
		{TechStack: "Go", Type: models.QuestionTypeLong, Text: "Explain the memory model."},
		{TechStack: "React", Type: models.QuestionTypeMCQ, Text: "What is JSX?", CorrectAnswer: "B"},
	}).Error)

	service := NewQuestionService(repository.NewQuestionRepository(db), redisClient, time.Minute, zerolog.Nop())

	questions, err := service.GetQuestions(context.Background(), "Go", models.QuestionTypeMCQ)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, "What is a channel?", questions[0].Text)
	require.True(t, mini.Exists("questions:Go:mcq"))

	// Deleting the row behind the cache proves the second read is served
	// from Redis.
	require.NoError(t, db.Where("tech_stack = ?", "Go").Delete(&models.Question{}).Error)

	cached, err := service.GetQuestions(context.Background(), "Go", models.QuestionTypeMCQ)
	require.NoError(t, err)
	require.Len(t, cached, 1)

	// A different type misses the cache and sees the deletion.
	longQuestions, err := service.GetQuestions(context.Background(), "Go", models.QuestionTypeLong)
	require.NoError(t, err)
	require.Empty(t, longQuestions)
}

func TestQuestionServiceWorksWithoutCache(t *testing.T) {
	db := setupServiceTestDB(t)
	require.NoError(t, db.Create(&[]models.Question{
		{TechStack: "Go", Type: models.QuestionTypeMCQ, Text: "What is a channel?", CorrectAnswer: "A"},
		{TechStack: "React", Type: models.QuestionTypeMCQ, Text: "What is JSX?", CorrectAnswer: "B"},
	}).Error)

	service := NewQuestionService(repository.NewQuestionRepository(db), nil, time.Minute, zerolog.Nop())

	questions, err := service.GetQuestions(context.Background(), "Go", "")
	require.NoError(t, err)
	require.Len(t, questions, 1)

	stacks, err := service.ListTechStacks(context.Background())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Go", "React"}, stacks)
}

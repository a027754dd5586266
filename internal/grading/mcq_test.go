package grading

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intervue-api/internal/models"
)

func mcqQuestion(id uint, text, correct string) models.Question {
	return models.Question{
		ID:            id,
		Type:          models.QuestionTypeMCQ,
		Text:          text,
		OptionA:       "React",
		OptionB:       "Vue",
		OptionC:       "Angular",
		OptionD:       "Svelte",
		CorrectAnswer: correct,
	}
}

func TestGradeMCQMixedEncodings(t *testing.T) {
	questions := []models.Question{
		mcqQuestion(1, "Pick the library", "1"),
		mcqQuestion(2, "Pick the framework", "C"),
	}
	responses := []models.Response{
		{QuestionID: 1, QuestionType: models.QuestionTypeMCQ, Answer: "A"},
		{QuestionID: 2, QuestionType: models.QuestionTypeMCQ, Answer: "B"},
	}

	marks, details := GradeMCQ(responses, questions)
	require.Equal(t, 1, marks)
	require.Len(t, details, 2)

	require.True(t, details[0].IsCorrect)
	require.Equal(t, "A", details[0].UserAnswer)
	require.Equal(t, "A", details[0].CorrectAnswer)

	require.False(t, details[1].IsCorrect)
	require.Equal(t, "B", details[1].UserAnswer)
	require.Equal(t, "C", details[1].CorrectAnswer)
}

func TestGradeMCQMissingQuestionIsKept(t *testing.T) {
	responses := []models.Response{
		{QuestionID: 99, QuestionType: models.QuestionTypeMCQ, Answer: "a", QuestionText: "Orphan"},
	}

	marks, details := GradeMCQ(responses, nil)
	require.Equal(t, 0, marks)
	require.Len(t, details, 1)
	require.False(t, details[0].IsCorrect)
	require.Equal(t, CorrectAnswerNotFound, details[0].CorrectAnswer)
	require.Equal(t, "Orphan", details[0].Question)
}

func TestGradeMCQSkipsFreeTextAndPreservesOrder(t *testing.T) {
	questions := []models.Question{
		mcqQuestion(1, "First", "b"),
		mcqQuestion(3, "Third", "option_d"),
	}
	responses := []models.Response{
		{QuestionID: 1, QuestionType: models.QuestionTypeMCQ, Answer: "2"},
		{QuestionID: 2, QuestionType: models.QuestionTypeLong, Answer: "an essay"},
		{QuestionID: 3, QuestionType: models.QuestionTypeMCQ, Answer: "d"},
	}

	marks, details := GradeMCQ(responses, questions)
	require.Equal(t, 2, marks)
	require.Len(t, details, 2)
	require.Equal(t, 1, details[0].QuestionNumber)
	require.Equal(t, uint(1), details[0].QuestionID)
	require.Equal(t, 2, details[1].QuestionNumber)
	require.Equal(t, uint(3), details[1].QuestionID)
	require.True(t, details[0].IsCorrect)
	require.True(t, details[1].IsCorrect)
}

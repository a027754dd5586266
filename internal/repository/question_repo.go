package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/models"
)

// QuestionRepository defines read access to the technical question bank.
// The bank is authored out of band and is read-only from the pipeline.
type QuestionRepository interface {
	ListByTechStack(ctx context.Context, techStack, questionType string) ([]models.Question, error)
	ListTechStacks(ctx context.Context) ([]string, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository instantiates the repository.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) ListByTechStack(ctx context.Context, techStack, questionType string) ([]models.Question, error) {
	query := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("tech_stack = ?", techStack)

	if questionType != "" {
		query = query.Where("type = ?", questionType)
	}

	var questions []models.Question
	if err := query.Order("id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepository) ListTechStacks(ctx context.Context) ([]string, error) {
	var stacks []string
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Distinct("tech_stack").
		Order("tech_stack ASC").
		Pluck("tech_stack", &stacks).Error; err != nil {
		return nil, err
	}

	return stacks, nil
}

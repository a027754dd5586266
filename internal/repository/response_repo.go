package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/models"
)

// ResponseRepository defines data operations for candidate responses.
// Responses are append-only; there is no update or delete.
type ResponseRepository interface {
	AppendBatch(ctx context.Context, responses []models.Response) error
	ListBySession(ctx context.Context, sessionID string) ([]models.Response, error)
}

type responseRepository struct {
	db *gorm.DB
}

// NewResponseRepository instantiates the repository.
func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) AppendBatch(ctx context.Context, responses []models.Response) error {
	if len(responses) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Create(&responses).Error
}

func (r *responseRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Response, error) {
	var responses []models.Response
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&responses).Error; err != nil {
		return nil, err
	}

	return responses, nil
}

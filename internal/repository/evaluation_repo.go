package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/models"
)

// EvaluationRepository stores standalone evaluation results. One current row
// exists per session; provisional rows are overwritten in place when deferred
// grading completes.
type EvaluationRepository interface {
	Upsert(ctx context.Context, evaluation *models.Evaluation) error
	GetBySession(ctx context.Context, sessionID string) (models.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository instantiates the repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Upsert(ctx context.Context, evaluation *models.Evaluation) error {
	var existing models.Evaluation
	err := r.db.WithContext(ctx).
		Where("session_id = ?", evaluation.SessionID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(evaluation).Error
	}
	if err != nil {
		return err
	}

	existing.TechStack = evaluation.TechStack
	existing.OverallScore = evaluation.OverallScore
	existing.Passed = evaluation.Passed
	existing.Provisional = evaluation.Provisional
	existing.Payload = evaluation.Payload

	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}

	*evaluation = existing
	return nil
}

func (r *evaluationRepository) GetBySession(ctx context.Context, sessionID string) (models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&evaluation).Error; err != nil {
		return models.Evaluation{}, err
	}

	return evaluation, nil
}

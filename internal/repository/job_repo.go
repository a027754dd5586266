package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/models"
)

// EvaluationJobRepository manages the deferred grading queue.
type EvaluationJobRepository interface {
	Enqueue(ctx context.Context, job *models.EvaluationJob) error
	ListPending(ctx context.Context, limit int) ([]models.EvaluationJob, error)
	Claim(ctx context.Context, id uint) (bool, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type evaluationJobRepository struct {
	db *gorm.DB
}

// NewEvaluationJobRepository instantiates the repository.
func NewEvaluationJobRepository(db *gorm.DB) EvaluationJobRepository {
	return &evaluationJobRepository{db: db}
}

func (r *evaluationJobRepository) Enqueue(ctx context.Context, job *models.EvaluationJob) error {
	job.Status = models.JobStatusPending
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *evaluationJobRepository) ListPending(ctx context.Context, limit int) ([]models.EvaluationJob, error) {
	var jobs []models.EvaluationJob
	query := r.db.WithContext(ctx).
		Where("status = ?", models.JobStatusPending).
		Order("created_at ASC, id ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}

	return jobs, nil
}

// Claim atomically moves a job from pending to processing. A false return
// with nil error means another worker won the race and the caller must skip
// the job.
func (r *evaluationJobRepository) Claim(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.EvaluationJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusPending).
		Update("status", models.JobStatusProcessing)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *evaluationJobRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).Model(&models.EvaluationJob{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *evaluationJobRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.EvaluationJob{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

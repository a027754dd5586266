package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/models"
)

// ResumeRepository stores pre-extracted resume text.
type ResumeRepository interface {
	Create(ctx context.Context, resume *models.Resume) error
	LatestBySession(ctx context.Context, sessionID string) (models.Resume, error)
}

type resumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository instantiates the repository.
func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

func (r *resumeRepository) Create(ctx context.Context, resume *models.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

func (r *resumeRepository) LatestBySession(ctx context.Context, sessionID string) (models.Resume, error) {
	var resume models.Resume
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("uploaded_at DESC, id DESC").
		First(&resume).Error; err != nil {
		return models.Resume{}, err
	}

	return resume, nil
}

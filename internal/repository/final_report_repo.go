package repository

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/intervue-api/internal/models"
)

// FinalReportRepository stores the per-session aggregate report. The
// evaluation field only moves forward: null -> provisional -> final.
type FinalReportRepository interface {
	UpsertMCQ(ctx context.Context, report *models.FinalReport) error
	SetProvisionalEvaluation(ctx context.Context, sessionID string, evaluation datatypes.JSON) error
	SetFinalEvaluation(ctx context.Context, sessionID string, evaluation datatypes.JSON) error
	GetBySession(ctx context.Context, sessionID string) (models.FinalReport, error)
}

type finalReportRepository struct {
	db *gorm.DB
}

// NewFinalReportRepository instantiates the repository.
func NewFinalReportRepository(db *gorm.DB) FinalReportRepository {
	return &finalReportRepository{db: db}
}

// UpsertMCQ writes the MCQ portion of the report, creating the row on first
// submission. An existing evaluation field and status are left untouched so a
// resubmission can never regress a graded report.
func (r *finalReportRepository) UpsertMCQ(ctx context.Context, report *models.FinalReport) error {
	var existing models.FinalReport
	err := r.db.WithContext(ctx).
		Where("session_id = ?", report.SessionID).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if report.Status == "" {
			report.Status = models.ReportStatusProcessing
		}
		return r.db.WithContext(ctx).Create(report).Error
	}
	if err != nil {
		return err
	}

	existing.TechStack = report.TechStack
	existing.MCQMarks = report.MCQMarks
	existing.MCQTotal = report.MCQTotal

	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return err
	}

	*report = existing
	return nil
}

// SetProvisionalEvaluation stores an MCQ-only evaluation while free-text
// grading is outstanding. The conditional update protects an already-final
// report from being regressed by a late provisional write.
func (r *finalReportRepository) SetProvisionalEvaluation(ctx context.Context, sessionID string, evaluation datatypes.JSON) error {
	return r.db.WithContext(ctx).Model(&models.FinalReport{}).
		Where("session_id = ? AND status <> ?", sessionID, models.ReportStatusFinal).
		Updates(map[string]interface{}{
			"evaluation": evaluation,
			"status":     models.ReportStatusProcessing,
		}).Error
}

// SetFinalEvaluation overwrites the report's evaluation with the completed
// result and marks the report final.
func (r *finalReportRepository) SetFinalEvaluation(ctx context.Context, sessionID string, evaluation datatypes.JSON) error {
	result := r.db.WithContext(ctx).Model(&models.FinalReport{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"evaluation": evaluation,
			"status":     models.ReportStatusFinal,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *finalReportRepository) GetBySession(ctx context.Context, sessionID string) (models.FinalReport, error) {
	var report models.FinalReport
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&report).Error; err != nil {
		return models.FinalReport{}, err
	}

	return report, nil
}

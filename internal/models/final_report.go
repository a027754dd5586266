package models

import (
	"time"

	"gorm.io/datatypes"
)

// Final report statuses. The evaluation field transitions monotonically
// null -> provisional -> final and is never regressed.
const (
	ReportStatusProcessing = "mcq_complete_processing_written"
	ReportStatusFinal      = "final"
)

// FinalReport is the per-session aggregate projection: MCQ marks plus the
// long/short evaluation (or a processing marker while deferred grading is
// outstanding). A final report exists as soon as any response has been
// submitted for the session.
type FinalReport struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SessionID  string         `gorm:"size:128;not null;uniqueIndex" json:"session_id"`
	TechStack  string         `gorm:"size:128;not null" json:"tech_stack"`
	MCQMarks   int            `json:"mcq_marks"`
	MCQTotal   int            `json:"mcq_total"`
	Evaluation datatypes.JSON `gorm:"type:json" json:"long_short_evaluation"`
	Status     string         `gorm:"size:48;not null" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName keeps the historical table name.
func (FinalReport) TableName() string {
	return "final_reports"
}

// IsFinal reports whether free-text grading has completed for the session.
func (r FinalReport) IsFinal() bool {
	return r.Status == ReportStatusFinal
}

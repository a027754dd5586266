package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluation job lifecycle states. A job moves pending -> processing ->
// done|error. The processing transition is a claim: a worker may only grade
// jobs whose state it moved itself.
const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusDone       = "done"
	JobStatusError      = "error"
)

// EvaluationJob is a deferred free-text grading task for a standard-tier
// session. The job carries snapshots of everything the worker needs so it can
// grade without re-reading the session's responses.
type EvaluationJob struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	SessionID  string         `gorm:"size:128;not null;index" json:"session_id"`
	TechStack  string         `gorm:"size:128;not null" json:"tech_stack"`
	Answers    datatypes.JSON `gorm:"type:json" json:"long_short_answers"`
	MCQDetails datatypes.JSON `gorm:"type:json" json:"mcq_details"`
	MCQMarks   int            `json:"mcq_marks"`
	MCQTotal   int            `json:"mcq_total"`
	ResumeText string         `gorm:"type:text" json:"resume_text,omitempty"`
	Status     string         `gorm:"size:16;not null;index;default:pending" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// TableName keeps the queue table name explicit.
func (EvaluationJob) TableName() string {
	return "evaluation_jobs"
}

// IsTerminal reports whether the job has finished its lifecycle.
func (j EvaluationJob) IsTerminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusError
}

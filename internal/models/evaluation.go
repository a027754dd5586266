package models

import (
	"time"

	"gorm.io/datatypes"
)

// Evaluation is the standalone structured grading result for a session.
// Exactly one current row exists per session: standard-tier sessions get a
// provisional MCQ-only row at submission time which is overwritten in place
// once deferred free-text grading completes.
type Evaluation struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SessionID    string         `gorm:"size:128;not null;uniqueIndex" json:"session_id"`
	TechStack    string         `gorm:"size:128;not null" json:"tech_stack"`
	OverallScore float64        `json:"overall_score"`
	Passed       bool           `json:"passed"`
	Provisional  bool           `json:"provisional"`
	Payload      datatypes.JSON `gorm:"type:json" json:"payload"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName keeps the evaluation table name explicit.
func (Evaluation) TableName() string {
	return "evaluations"
}

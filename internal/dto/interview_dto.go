package dto

import (
	"encoding/json"
	"time"

	"github.com/noah-isme/intervue-api/internal/grading"
	"github.com/noah-isme/intervue-api/internal/models"
	"github.com/noah-isme/intervue-api/pkg/ai"
)

// SubmittedResponse is one candidate answer within a submission payload.
type SubmittedResponse struct {
	QuestionID       uint   `json:"questionId" validate:"required,gt=0"`
	QuestionText     string `json:"questionText"`
	QuestionType     string `json:"questionType" validate:"required,oneof=mcq short long"`
	Answer           string `json:"answer"`
	TimeSpentSeconds int    `json:"timeSpent" validate:"gte=0"`
}

// SubmitInterviewRequest is the submission payload for a completed session.
type SubmitInterviewRequest struct {
	SessionID  string              `json:"sessionId" validate:"required"`
	TechStack  string              `json:"techStack" validate:"required"`
	Responses  []SubmittedResponse `json:"responses" validate:"required,min=1,dive"`
	ResumeText string              `json:"resumeText"`
	IsPro      bool                `json:"isPro"`
}

// SubmitInterviewResponse is returned for every accepted submission. MCQ
// fields are always present; Evaluation is inline for privileged or MCQ-only
// sessions, Queued flags the deferred standard-tier path, and
// EvaluationError carries an explicit failure indicator when synchronous
// grading exhausted its retries.
type SubmitInterviewResponse struct {
	SessionID       string               `json:"session_id"`
	MCQMarks        int                  `json:"mcq_marks"`
	MCQTotal        int                  `json:"mcq_total"`
	MCQDetails      []grading.MCQDetail  `json:"mcq_details"`
	Evaluation      *ai.EvaluationResult `json:"evaluation,omitempty"`
	Queued          bool                 `json:"queued,omitempty"`
	EvaluationError string               `json:"evaluation_error,omitempty"`
}

// ResponseItem is returned to API clients when listing session responses.
type ResponseItem struct {
	ID               uint      `json:"id"`
	SessionID        string    `json:"session_id"`
	TechStack        string    `json:"tech_stack"`
	QuestionID       uint      `json:"question_id"`
	QuestionText     string    `json:"question_text"`
	QuestionType     string    `json:"question_type"`
	Answer           string    `json:"user_answer"`
	TimeSpentSeconds int       `json:"time_spent"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewResponseItem maps a stored response to its API representation.
func NewResponseItem(response models.Response) ResponseItem {
	return ResponseItem{
		ID:               response.ID,
		SessionID:        response.SessionID,
		TechStack:        response.TechStack,
		QuestionID:       response.QuestionID,
		QuestionText:     response.QuestionText,
		QuestionType:     response.QuestionType,
		Answer:           response.Answer,
		TimeSpentSeconds: response.TimeSpentSeconds,
		CreatedAt:        response.CreatedAt,
	}
}

// ResumeUploadRequest stores pre-extracted resume text for a session.
type ResumeUploadRequest struct {
	FileName      string `json:"fileName" validate:"required"`
	ExtractedText string `json:"extractedText" validate:"required"`
	SessionID     string `json:"sessionId"`
	UserID        string `json:"userId"`
}

// FinalReportResponse is the aggregate per-session report projection.
type FinalReportResponse struct {
	SessionID  string          `json:"session_id"`
	TechStack  string          `json:"tech_stack"`
	MCQMarks   int             `json:"mcq_marks"`
	MCQTotal   int             `json:"mcq_total"`
	Status     string          `json:"status"`
	Evaluation json.RawMessage `json:"long_short_evaluation,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// NewFinalReportResponse maps a stored report to its API representation.
func NewFinalReportResponse(report models.FinalReport) FinalReportResponse {
	return FinalReportResponse{
		SessionID:  report.SessionID,
		TechStack:  report.TechStack,
		MCQMarks:   report.MCQMarks,
		MCQTotal:   report.MCQTotal,
		Status:     report.Status,
		Evaluation: json.RawMessage(report.Evaluation),
		CreatedAt:  report.CreatedAt,
		UpdatedAt:  report.UpdatedAt,
	}
}

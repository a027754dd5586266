package models

import "time"

// Response is one candidate answer within an interview session. Responses are
// append-only: a session accumulates rows in submission order and existing
// rows are never mutated.
type Response struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	SessionID        string    `gorm:"size:128;not null;index" json:"session_id"`
	TechStack        string    `gorm:"size:128;not null" json:"tech_stack"`
	QuestionID       uint      `gorm:"not null" json:"question_id"`
	QuestionText     string    `gorm:"type:text" json:"question_text"`
	QuestionType     string    `gorm:"size:16;not null" json:"question_type"`
	Answer           string    `gorm:"type:text" json:"user_answer"`
	TimeSpentSeconds int       `json:"time_spent"`
	IsPro            bool      `json:"is_pro_user"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName keeps the historical table name.
func (Response) TableName() string {
	return "user_responses"
}

// IsFreeText reports whether the response needs qualitative grading.
func (r Response) IsFreeText() bool {
	return r.QuestionType != QuestionTypeMCQ
}

package models

import "time"

// Question types supported by the interview bank.
const (
	QuestionTypeMCQ   = "mcq"
	QuestionTypeShort = "short"
	QuestionTypeLong  = "long"
)

// Question is a single entry in the technical question bank. Questions are
// authored out of band and are read-only from the evaluation pipeline's
// perspective.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TechStack     string    `gorm:"size:128;not null;index" json:"tech_stack"`
	Type          string    `gorm:"size:16;not null" json:"question_type"`
	Text          string    `gorm:"type:text;not null" json:"question_text"`
	OptionA       string    `gorm:"size:512" json:"option_a,omitempty"`
	OptionB       string    `gorm:"size:512" json:"option_b,omitempty"`
	OptionC       string    `gorm:"size:512" json:"option_c,omitempty"`
	OptionD       string    `gorm:"size:512" json:"option_d,omitempty"`
	CorrectAnswer string    `gorm:"size:512" json:"correct_answer,omitempty"`
	Difficulty    string    `gorm:"size:32" json:"difficulty_level"`
	Topic         string    `gorm:"size:128" json:"topic"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName keeps the historical table name used by the question bank.
func (Question) TableName() string {
	return "technical_questions"
}

// IsMCQ reports whether the question is multiple choice.
func (q Question) IsMCQ() bool {
	return q.Type == QuestionTypeMCQ
}

// Options returns the non-empty option texts in display order.
func (q Question) Options() []string {
	options := make([]string, 0, 4)
	for _, option := range []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD} {
		if option != "" {
			options = append(options, option)
		}
	}
	return options
}

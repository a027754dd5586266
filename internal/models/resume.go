package models

import "time"

// Resume holds pre-extracted resume text uploaded alongside a session. Text
// extraction happens client side; the API stores the result verbatim and uses
// it as optional context for the grading prompt.
type Resume struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FileName      string    `gorm:"size:256;not null" json:"file_name"`
	ExtractedText string    `gorm:"type:text;not null" json:"extracted_text"`
	SessionID     string    `gorm:"size:128;index" json:"session_id,omitempty"`
	UserID        string    `gorm:"size:128" json:"user_id,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// TableName keeps the historical table name.
func (Resume) TableName() string {
	return "resumes"
}

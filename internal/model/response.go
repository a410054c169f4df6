package model

import (
	"time"

	"gorm.io/datatypes"
)

// Response is append-only. FormID carries no foreign key so submissions
// outlive the form they answered.
type Response struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	FormID       uint           `json:"form_id" gorm:"not null;index"`
	UserID       *uint          `json:"user_id,omitempty" gorm:"index"`
	ResponseData datatypes.JSON `json:"response_data"` // JSON array of AnswerEntry, submission order
	SubmittedAt  time.Time      `json:"submitted_at" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
}

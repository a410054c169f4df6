package model

import (
	"time"
)

type Question struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	SectionID   uint         `json:"section_id" gorm:"not null;index"`
	Title       string       `json:"title" gorm:"not null"`
	Description *string      `json:"description,omitempty" gorm:"type:text"`
	Type        QuestionType `json:"question_type" gorm:"column:question_type;type:varchar(32);not null"`
	IsRequired  bool         `json:"is_required" gorm:"not null;default:false"` // advisory only
	Order       int          `json:"order" gorm:"column:display_order;not null;default:0"`
	ImageKey    *string      `json:"-"`
	Version     int          `json:"version" gorm:"not null;default:1"` // bumped on every UpdateQuestion
	Options     []Option     `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

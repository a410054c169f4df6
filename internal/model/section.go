package model

import "time"

const DefaultSectionTitle = "Untitled Section"

type Section struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	FormID      uint       `json:"form_id" gorm:"not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description *string    `json:"description,omitempty" gorm:"type:text"`
	Order       int        `json:"order" gorm:"column:display_order;not null;default:0"`
	ImageKey    *string    `json:"-"`
	Questions   []Question `json:"questions,omitempty" gorm:"foreignKey:SectionID"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

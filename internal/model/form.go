package model

import "time"

type Form struct {
	ID            uint       `gorm:"primarykey" json:"id"`
	Title         string     `json:"title" gorm:"not null"`
	Description   string     `json:"description" gorm:"type:text"`
	OwnerID       uint       `json:"owner_id" gorm:"not null;index"`
	ImageKey      *string    `json:"-"`
	ResponseToken *string    `json:"response_token,omitempty" gorm:"column:response_link;uniqueIndex"` // nil until published
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	Sections      []Section  `json:"sections,omitempty" gorm:"foreignKey:FormID"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsPublished reports whether a response link has been issued.
func (f *Form) IsPublished() bool {
	return f.ResponseToken != nil && *f.ResponseToken != ""
}

// ResponseLink builds the public answering link, optionally prefixed with baseURL.
func ResponseLink(baseURL, token string) string {
	return baseURL + "/response/" + token + "/"
}

package model

import "time"

type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Username     string     `json:"username" gorm:"not null;uniqueIndex"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Fullname     string     `json:"fullname"`
	EmailAddress string     `json:"email_address" gorm:"not null;uniqueIndex"`
	PicURL       *string    `json:"pic_url,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	Forms        []Form     `json:"forms,omitempty" gorm:"foreignKey:OwnerID"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

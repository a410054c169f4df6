package dto

import (
	"encoding/json"
	"time"
)

type UserResponse struct {
	ID           uint       `json:"id"`
	Username     string     `json:"username"`
	Fullname     string     `json:"fullname"`
	EmailAddress string     `json:"email_address"`
	PicURL       *string    `json:"pic_url,omitempty"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type FormResponse struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	OwnerID      uint       `json:"owner_id"`
	ImageURL     *string    `json:"image_url,omitempty"`
	ResponseLink *string    `json:"response_link,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FormCompleteResponse is the nested read-only tree of a form.
type FormCompleteResponse struct {
	FormResponse
	Sections []SectionCompleteResponse `json:"sections"`
}

type PublishResponse struct {
	Link  string `json:"link"`
	Token string `json:"token"`
}

type SectionResponse struct {
	ID          uint      `json:"id"`
	FormID      uint      `json:"form_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Order       int       `json:"order"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SectionCompleteResponse struct {
	SectionResponse
	Questions []QuestionResponse `json:"questions"`
}

type QuestionResponse struct {
	ID          uint             `json:"id"`
	SectionID   uint             `json:"section_id"`
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Type        string           `json:"question_type"`
	IsRequired  bool             `json:"is_required"`
	Order       int              `json:"order"`
	Version     int              `json:"version"`
	ImageURL    *string          `json:"image_url,omitempty"`
	Options     []OptionResponse `json:"options"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type OptionResponse struct {
	ID         uint    `json:"id"`
	QuestionID uint    `json:"question_id"`
	Text       string  `json:"text"`
	ImageURL   *string `json:"image_url,omitempty"`
}

type AnswerResponse struct {
	QuestionKey string          `json:"question_key"`
	Kind        string          `json:"kind"`
	Text        *string         `json:"text,omitempty"`
	OptionID    *uint           `json:"option_id,omitempty"`
	OptionIDs   []uint          `json:"option_ids,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty" swaggertype:"object"`
}

// SubmissionResponse is a stored response with its tagged answers, unresolved.
type SubmissionResponse struct {
	ID          uint             `json:"id"`
	FormID      uint             `json:"form_id"`
	UserID      *uint            `json:"user_id,omitempty"`
	Answers     []AnswerResponse `json:"answers"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type ImageResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

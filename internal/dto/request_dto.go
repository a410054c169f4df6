package dto

type RegisterUserRequest struct {
	Username     string  `json:"username" binding:"required,min=3,max=64"`
	Password     string  `json:"password" binding:"required,min=8,max=72"` // bcrypt reads at most 72 bytes
	Fullname     string  `json:"fullname" binding:"max=128"`
	EmailAddress string  `json:"email_address" binding:"required,email"`
	PicURL       *string `json:"pic_url" binding:"omitempty,url"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateFormRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
}

// UpdateFormRequest applies only the fields that are present.
type UpdateFormRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

type CreateSectionRequest struct {
	Title       string  `json:"title" binding:"max=255"` // empty falls back to the default title
	Description *string `json:"description"`
	Order       *int    `json:"order"` // appended after the last section when omitted
}

type UpdateSectionRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
}

// OptionInput carries an id only when it refers to an existing option.
type OptionInput struct {
	ID   *uint  `json:"id"`
	Text string `json:"text" binding:"required"`
}

type CreateQuestionRequest struct {
	Title       string        `json:"title" binding:"required"`
	Description *string       `json:"description"`
	Type        string        `json:"question_type" binding:"required,oneof=text paragraph date time multiple_choice checkboxes dropdown checkbox_grid linear_scale file_upload rating multiple_choice_grid"`
	IsRequired  bool          `json:"is_required"`
	Order       *int          `json:"order"`
	Options     []OptionInput `json:"options" binding:"omitempty,dive"`
}

// UpdateQuestionRequest replaces every scalar field. A nil Options leaves the
// current options alone; an empty list removes them all. Version, when sent,
// must match the stored version.
type UpdateQuestionRequest struct {
	Title       string        `json:"title" binding:"required"`
	Description *string       `json:"description"`
	Type        string        `json:"question_type" binding:"required,oneof=text paragraph date time multiple_choice checkboxes dropdown checkbox_grid linear_scale file_upload rating multiple_choice_grid"`
	IsRequired  bool          `json:"is_required"`
	Order       int           `json:"order"`
	Options     []OptionInput `json:"options" binding:"omitempty,dive"`
	Version     *int          `json:"version" binding:"omitempty,min=1"`
}

type CreateOptionRequest struct {
	Text string `json:"text" binding:"required"`
}

type UpdateOptionRequest struct {
	Text string `json:"text" binding:"required"`
}

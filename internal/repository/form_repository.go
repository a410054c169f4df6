package repository

import (
	"context"
	"time"

	"github.com/lshigami/formkit/internal/model"
	"gorm.io/gorm"
)

type FormRepository interface {
	WithTx(tx *gorm.DB) FormRepository
	Create(ctx context.Context, form *model.Form) error
	FindByID(ctx context.Context, id uint) (*model.Form, error)
	FindByResponseToken(ctx context.Context, token string) (*model.Form, error)
	FindTreeByID(ctx context.Context, id uint) (*model.Form, error) // Eager loads sections, questions and options
	FindAllByOwner(ctx context.Context, ownerID uint) ([]model.Form, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
	SetResponseToken(ctx context.Context, id uint, token string, at time.Time) (bool, error)
	DeleteCascade(ctx context.Context, id uint) (*DeletedTree, error)
}

type formRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) FormRepository {
	return &formRepository{db: db}
}

func (r *formRepository) WithTx(tx *gorm.DB) FormRepository {
	return &formRepository{db: tx}
}

func (r *formRepository) Create(ctx context.Context, form *model.Form) error {
	// Sections are created explicitly by the service, not through the association.
	return translateError(r.db.WithContext(ctx).Omit("Sections").Create(form).Error)
}

func (r *formRepository) FindByID(ctx context.Context, id uint) (*model.Form, error) {
	var form model.Form
	if err := r.db.WithContext(ctx).First(&form, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &form, nil
}

func (r *formRepository) FindByResponseToken(ctx context.Context, token string) (*model.Form, error) {
	var form model.Form
	if err := r.db.WithContext(ctx).Where("response_link = ?", token).First(&form).Error; err != nil {
		return nil, translateError(err)
	}
	return &form, nil
}

func byDisplayOrder(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("id ASC")
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *formRepository) FindTreeByID(ctx context.Context, id uint) (*model.Form, error) {
	var form model.Form
	err := r.db.WithContext(ctx).
		Preload("Sections", byDisplayOrder).
		Preload("Sections.Questions", byDisplayOrder).
		Preload("Sections.Questions.Options", byID).
		First(&form, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &form, nil
}

func (r *formRepository) FindAllByOwner(ctx context.Context, ownerID uint) ([]model.Form, error) {
	var forms []model.Form
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Order("id DESC").Find(&forms).Error; err != nil {
		return nil, translateError(err)
	}
	return forms, nil
}

func (r *formRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Form{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResponseToken stores the token only if none is set yet. It reports
// whether this call won.
func (r *formRepository) SetResponseToken(ctx context.Context, id uint, token string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Form{}).
		Where("id = ? AND response_link IS NULL", id).
		Updates(map[string]interface{}{"response_link": token, "published_at": at})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *formRepository) DeleteCascade(ctx context.Context, id uint) (*DeletedTree, error) {
	tree := &DeletedTree{}
	if err := deleteForm(r.db.WithContext(ctx), id, tree); err != nil {
		return nil, translateError(err)
	}
	return tree, nil
}

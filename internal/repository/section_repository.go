package repository

import (
	"context"
	"database/sql"

	"github.com/lshigami/formkit/internal/model"
	"gorm.io/gorm"
)

type SectionRepository interface {
	WithTx(tx *gorm.DB) SectionRepository
	Create(ctx context.Context, section *model.Section) error
	FindByID(ctx context.Context, id uint) (*model.Section, error)
	FindByIDWithQuestions(ctx context.Context, id uint) (*model.Section, error)
	FindAllByFormID(ctx context.Context, formID uint) ([]model.Section, error)
	NextOrder(ctx context.Context, formID uint) (int, error)
	Updates(ctx context.Context, id uint, fields map[string]interface{}) error
	DeleteCascade(ctx context.Context, id uint) (*DeletedTree, error)
}

type sectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) WithTx(tx *gorm.DB) SectionRepository {
	return &sectionRepository{db: tx}
}

func (r *sectionRepository) Create(ctx context.Context, section *model.Section) error {
	return translateError(r.db.WithContext(ctx).Omit("Questions").Create(section).Error)
}

func (r *sectionRepository) FindByID(ctx context.Context, id uint) (*model.Section, error) {
	var section model.Section
	if err := r.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &section, nil
}

func (r *sectionRepository) FindByIDWithQuestions(ctx context.Context, id uint) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Preload("Questions", byDisplayOrder).
		Preload("Questions.Options", byID).
		First(&section, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &section, nil
}

func (r *sectionRepository) FindAllByFormID(ctx context.Context, formID uint) ([]model.Section, error) {
	var sections []model.Section
	if err := byDisplayOrder(r.db.WithContext(ctx).Where("form_id = ?", formID)).Find(&sections).Error; err != nil {
		return nil, translateError(err)
	}
	return sections, nil
}

func (r *sectionRepository) Updates(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Section{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sectionRepository) DeleteCascade(ctx context.Context, id uint) (*DeletedTree, error) {
	tree := &DeletedTree{}
	if err := deleteSections(r.db.WithContext(ctx), []uint{id}, tree); err != nil {
		return nil, translateError(err)
	}
	if tree.Sections == 0 {
		return nil, ErrNotFound
	}
	return tree, nil
}

// NextOrder returns one past the highest display order under the parent.
func (r *sectionRepository) NextOrder(ctx context.Context, formID uint) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).Model(&model.Section{}).
		Where("form_id = ?", formID).
		Select("MAX(display_order)").
		Scan(&max).Error
	if err != nil {
		return 0, translateError(err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

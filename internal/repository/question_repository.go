package repository

import (
	"context"
	"database/sql"

	"github.com/lshigami/formkit/internal/model"
	"gorm.io/gorm"
)

type QuestionRepository interface {
	WithTx(tx *gorm.DB) QuestionRepository
	Create(ctx context.Context, question *model.Question) error
	FindByID(ctx context.Context, id uint) (*model.Question, error)
	FindByIDWithOptions(ctx context.Context, id uint) (*model.Question, error)
	FindAllBySectionID(ctx context.Context, sectionID uint) ([]model.Question, error)
	NextOrder(ctx context.Context, sectionID uint) (int, error)
	FindAllByFormID(ctx context.Context, formID uint) ([]model.Question, error) // Options preloaded
	CompareAndSwap(ctx context.Context, id uint, version int, fields map[string]interface{}) error
	BumpVersion(ctx context.Context, id uint) error
	DeleteCascade(ctx context.Context, id uint) (*DeletedTree, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) WithTx(tx *gorm.DB) QuestionRepository {
	return &questionRepository{db: tx}
}

func (r *questionRepository) Create(ctx context.Context, question *model.Question) error {
	return translateError(r.db.WithContext(ctx).Omit("Options").Create(question).Error)
}

func (r *questionRepository) FindByID(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

func (r *questionRepository) FindByIDWithOptions(ctx context.Context, id uint) (*model.Question, error) {
	var question model.Question
	if err := r.db.WithContext(ctx).Preload("Options", byID).First(&question, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

func (r *questionRepository) FindAllBySectionID(ctx context.Context, sectionID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := byDisplayOrder(r.db.WithContext(ctx).Where("section_id = ?", sectionID)).Find(&questions).Error; err != nil {
		return nil, translateError(err)
	}
	return questions, nil
}

func (r *questionRepository) FindAllByFormID(ctx context.Context, formID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.db.WithContext(ctx).
		Preload("Options", byID).
		Joins("JOIN sections ON sections.id = questions.section_id").
		Where("sections.form_id = ?", formID).
		Order("questions.id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, translateError(err)
	}
	return questions, nil
}

// CompareAndSwap applies fields and bumps the version only when the stored
// version still equals version.
func (r *questionRepository) CompareAndSwap(ctx context.Context, id uint, version int, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	db := r.db.WithContext(ctx)
	res := db.Model(&model.Question{}).Where("id = ? AND version = ?", id, version).Updates(updates)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var count int64
	if err := db.Model(&model.Question{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStaleVersion
}

func (r *questionRepository) DeleteCascade(ctx context.Context, id uint) (*DeletedTree, error) {
	tree := &DeletedTree{}
	if err := deleteQuestions(r.db.WithContext(ctx), []uint{id}, tree); err != nil {
		return nil, translateError(err)
	}
	if tree.Questions == 0 {
		return nil, ErrNotFound
	}
	return tree, nil
}

// NextOrder returns one past the highest display order under the parent.
func (r *questionRepository) NextOrder(ctx context.Context, sectionID uint) (int, error) {
	var max sql.NullInt64
	err := r.db.WithContext(ctx).Model(&model.Question{}).
		Where("section_id = ?", sectionID).
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

// BumpVersion marks the question as changed so that in-flight
// compare-and-swap updates based on the old version fail.
func (r *questionRepository) BumpVersion(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Question{}).Where("id = ?", id).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

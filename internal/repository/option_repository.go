package repository

import (
	"context"

	"github.com/lshigami/formkit/internal/model"
	"gorm.io/gorm"
)

type OptionRepository interface {
	WithTx(tx *gorm.DB) OptionRepository
	Create(ctx context.Context, option *model.Option) error
	CreateBatch(ctx context.Context, options []model.Option) error
	FindByID(ctx context.Context, id uint) (*model.Option, error)
	FindAllByQuestionID(ctx context.Context, questionID uint) ([]model.Option, error)
	UpdateText(ctx context.Context, id uint, text string) error
	Delete(ctx context.Context, id uint) (*DeletedTree, error)
	DeleteByIDs(ctx context.Context, ids []uint) (*DeletedTree, error)
	DeleteAllByQuestionID(ctx context.Context, questionID uint) (*DeletedTree, error)
}

type optionRepository struct {
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) OptionRepository {
	return &optionRepository{db: db}
}

func (r *optionRepository) WithTx(tx *gorm.DB) OptionRepository {
	return &optionRepository{db: tx}
}

func (r *optionRepository) Create(ctx context.Context, option *model.Option) error {
	return translateError(r.db.WithContext(ctx).Create(option).Error)
}

// CreateBatch inserts options in slice order so ids follow insertion order.
func (r *optionRepository) CreateBatch(ctx context.Context, options []model.Option) error {
	if len(options) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Create(&options).Error)
}

func (r *optionRepository) FindByID(ctx context.Context, id uint) (*model.Option, error) {
	var option model.Option
	if err := r.db.WithContext(ctx).First(&option, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &option, nil
}

func (r *optionRepository) FindAllByQuestionID(ctx context.Context, questionID uint) ([]model.Option, error) {
	var options []model.Option
	if err := r.db.WithContext(ctx).Where("question_id = ?", questionID).Order("id ASC").Find(&options).Error; err != nil {
		return nil, translateError(err)
	}
	return options, nil
}

func (r *optionRepository) UpdateText(ctx context.Context, id uint, text string) error {
	res := r.db.WithContext(ctx).Model(&model.Option{}).Where("id = ?", id).Update("text", text)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *optionRepository) Delete(ctx context.Context, id uint) (*DeletedTree, error) {
	tree, err := r.DeleteByIDs(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	if tree.Options == 0 {
		return nil, ErrNotFound
	}
	return tree, nil
}

func (r *optionRepository) DeleteByIDs(ctx context.Context, ids []uint) (*DeletedTree, error) {
	tree := &DeletedTree{}
	if len(ids) == 0 {
		return tree, nil
	}
	db := r.db.WithContext(ctx)
	if err := collectImageKeys(db, &model.Option{}, "id", ids, tree); err != nil {
		return nil, translateError(err)
	}
	res := db.Where("id IN ?", ids).Delete(&model.Option{})
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	tree.Options = res.RowsAffected
	return tree, nil
}

func (r *optionRepository) DeleteAllByQuestionID(ctx context.Context, questionID uint) (*DeletedTree, error) {
	tree := &DeletedTree{}
	if err := deleteOptionsOfQuestions(r.db.WithContext(ctx), []uint{questionID}, tree); err != nil {
		return nil, translateError(err)
	}
	return tree, nil
}

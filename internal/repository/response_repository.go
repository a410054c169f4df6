package repository

import (
	"context"

	"github.com/lshigami/formkit/internal/model"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	WithTx(tx *gorm.DB) ResponseRepository
	Create(ctx context.Context, response *model.Response) error
	FindByID(ctx context.Context, id uint) (*model.Response, error)
	CountByFormID(ctx context.Context, formID uint) (int64, error)
	FindAllByFormID(ctx context.Context, formID uint) ([]model.Response, error)
	// EachBatchByFormID walks responses in id order, batchSize rows at a time.
	// Returning an error from fn stops the walk.
	EachBatchByFormID(ctx context.Context, formID uint, batchSize int, fn func(batch []model.Response) error) error
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) WithTx(tx *gorm.DB) ResponseRepository {
	return &responseRepository{db: tx}
}

func (r *responseRepository) Create(ctx context.Context, response *model.Response) error {
	return translateError(r.db.WithContext(ctx).Create(response).Error)
}

func (r *responseRepository) FindByID(ctx context.Context, id uint) (*model.Response, error) {
	var response model.Response
	if err := r.db.WithContext(ctx).First(&response, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &response, nil
}

func (r *responseRepository) CountByFormID(ctx context.Context, formID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Response{}).Where("form_id = ?", formID).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *responseRepository) FindAllByFormID(ctx context.Context, formID uint) ([]model.Response, error) {
	var responses []model.Response
	if err := r.db.WithContext(ctx).Where("form_id = ?", formID).Order("id ASC").Find(&responses).Error; err != nil {
		return nil, translateError(err)
	}
	return responses, nil
}

func (r *responseRepository) EachBatchByFormID(ctx context.Context, formID uint, batchSize int, fn func(batch []model.Response) error) error {
	if batchSize <= 0 {
		batchSize = 100
	}
	var batch []model.Response
	res := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
			return fn(batch)
		})
	return translateError(res.Error)
}

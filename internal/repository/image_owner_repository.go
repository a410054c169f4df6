package repository

import (
	"context"
	"fmt"

	"github.com/lshigami/formkit/internal/model"
	"gorm.io/gorm"
)

// ImageOwnerRepository reads and writes the image_key column of whichever
// entity an image kind names.
type ImageOwnerRepository interface {
	ImageKey(ctx context.Context, kind model.ImageKind, id uint) (*string, error)
	SetImageKey(ctx context.Context, kind model.ImageKind, id uint, key string) error
}

type imageOwnerRepository struct {
	db *gorm.DB
}

func NewImageOwnerRepository(db *gorm.DB) ImageOwnerRepository {
	return &imageOwnerRepository{db: db}
}

func ownerModel(kind model.ImageKind) (interface{}, error) {
	switch kind {
	case model.ImageKindForm:
		return &model.Form{}, nil
	case model.ImageKindSection:
		return &model.Section{}, nil
	case model.ImageKindQuestion:
		return &model.Question{}, nil
	case model.ImageKindOption:
		return &model.Option{}, nil
	}
	return nil, fmt.Errorf("unsupported image kind %q", kind)
}

func (r *imageOwnerRepository) ImageKey(ctx context.Context, kind model.ImageKind, id uint) (*string, error) {
	m, err := ownerModel(kind)
	if err != nil {
		return nil, err
	}
	var row struct {
		ImageKey *string
	}
	res := r.db.WithContext(ctx).Model(m).Select("image_key").Where("id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return row.ImageKey, nil
}

func (r *imageOwnerRepository) SetImageKey(ctx context.Context, kind model.ImageKind, id uint, key string) error {
	m, err := ownerModel(kind)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(m).Where("id = ?", id).Update("image_key", key)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/lshigami/formkit/internal/storage"
	"github.com/rs/zerolog/log"
)

type ImageService interface {
	PutImage(ctx context.Context, kind model.ImageKind, id uint, data []byte, contentType string) (*dto.ImageResponse, error)
	GetImage(ctx context.Context, kind model.ImageKind, id uint) ([]byte, string, error)
}

type imageService struct {
	owners repository.ImageOwnerRepository
	store  *storage.ImageStore
}

func NewImageService(owners repository.ImageOwnerRepository, store *storage.ImageStore) ImageService {
	return &imageService{owners: owners, store: store}
}

func (s *imageService) PutImage(ctx context.Context, kind model.ImageKind, id uint, data []byte, contentType string) (*dto.ImageResponse, error) {
	if _, err := s.owners.ImageKey(ctx, kind, id); err != nil {
		return nil, fromRepository(err, entity(string(kind), id))
	}
	if len(data) == 0 {
		return nil, NewInvalidInputError("image is empty")
	}

	key := model.ImageKey(kind, id)
	ct, err := s.store.Put(key, data, contentType)
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return nil, NewInvalidInputError(fmt.Sprintf("image exceeds %d bytes", s.store.MaxBytes()))
	case errors.Is(err, storage.ErrNotImage):
		return nil, &Error{Code: ErrorInvalidInput, Message: "content is not an image", Err: err}
	case err != nil:
		log.Error().Err(err).Str("key", key).Msg("Failed to store image")
		return nil, err
	}

	if err := s.owners.SetImageKey(ctx, kind, id, key); err != nil {
		// owner vanished between the check and the write
		if delErr := s.store.Delete(key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("Failed to remove orphaned image")
		}
		return nil, fromRepository(err, entity(string(kind), id))
	}

	log.Info().Str("key", key).Str("contentType", ct).Int("bytes", len(data)).Msg("Image stored")
	return &dto.ImageResponse{URL: ImageURL(kind, id), ContentType: ct, Size: len(data)}, nil
}

func (s *imageService) GetImage(ctx context.Context, kind model.ImageKind, id uint) ([]byte, string, error) {
	key, err := s.owners.ImageKey(ctx, kind, id)
	if err != nil {
		return nil, "", fromRepository(err, entity(string(kind), id))
	}
	if key == nil {
		return nil, "", NewNotFoundError(fmt.Sprintf("%s %d has no image", kind, id))
	}
	data, ct, err := s.store.Get(*key)
	if errors.Is(err, storage.ErrImageNotFound) {
		return nil, "", NewNotFoundError(fmt.Sprintf("image of %s %d is missing from storage", kind, id))
	}
	if err != nil {
		return nil, "", err
	}
	return data, ct, nil
}

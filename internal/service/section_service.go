package service

import (
	"context"
	"strings"

	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/lshigami/formkit/internal/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type SectionService interface {
	CreateSection(ctx context.Context, formID uint, req dto.CreateSectionRequest) (*dto.SectionResponse, error)
	GetSection(ctx context.Context, id uint) (*dto.SectionResponse, error)
	ListSections(ctx context.Context, formID uint) ([]dto.SectionResponse, error)
	GetSectionComplete(ctx context.Context, id uint) (*dto.SectionCompleteResponse, error)
	UpdateSection(ctx context.Context, id uint, req dto.UpdateSectionRequest) (*dto.SectionResponse, error)
	DeleteSection(ctx context.Context, id uint) error
}

type sectionService struct {
	db          *gorm.DB
	formRepo    repository.FormRepository
	sectionRepo repository.SectionRepository
	images      *storage.ImageStore
}

func NewSectionService(db *gorm.DB, formRepo repository.FormRepository, sectionRepo repository.SectionRepository, images *storage.ImageStore) SectionService {
	return &sectionService{db: db, formRepo: formRepo, sectionRepo: sectionRepo, images: images}
}

func (s *sectionService) CreateSection(ctx context.Context, formID uint, req dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	section := model.Section{
		FormID:      formID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	}
	if section.Title == "" {
		section.Title = model.DefaultSectionTitle
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.formRepo.WithTx(tx).FindByID(ctx, formID); err != nil {
			return fromRepository(err, entity("form", formID))
		}
		repo := s.sectionRepo.WithTx(tx)
		if req.Order != nil {
			section.Order = *req.Order
		} else {
			next, err := repo.NextOrder(ctx, formID)
			if err != nil {
				return err
			}
			section.Order = next
		}
		return repo.Create(ctx, &section)
	})
	if err != nil {
		log.Error().Err(err).Uint("formID", formID).Msg("Failed to create section")
		return nil, err
	}
	resp := toSectionResponse(&section)
	return &resp, nil
}

func (s *sectionService) GetSection(ctx context.Context, id uint) (*dto.SectionResponse, error) {
	section, err := s.sectionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("section", id))
	}
	resp := toSectionResponse(section)
	return &resp, nil
}

func (s *sectionService) ListSections(ctx context.Context, formID uint) ([]dto.SectionResponse, error) {
	if _, err := s.formRepo.FindByID(ctx, formID); err != nil {
		return nil, fromRepository(err, entity("form", formID))
	}
	sections, err := s.sectionRepo.FindAllByFormID(ctx, formID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.SectionResponse, 0, len(sections))
	for i := range sections {
		resp = append(resp, toSectionResponse(&sections[i]))
	}
	return resp, nil
}

func (s *sectionService) GetSectionComplete(ctx context.Context, id uint) (*dto.SectionCompleteResponse, error) {
	section, err := s.sectionRepo.FindByIDWithQuestions(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("section", id))
	}
	resp := toSectionComplete(section)
	return &resp, nil
}

func (s *sectionService) UpdateSection(ctx context.Context, id uint, req dto.UpdateSectionRequest) (*dto.SectionResponse, error) {
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Order != nil {
		fields["display_order"] = *req.Order
	}

	var section *model.Section
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.sectionRepo.WithTx(tx)
		if err := repo.Updates(ctx, id, fields); err != nil {
			return fromRepository(err, entity("section", id))
		}
		var err error
		section, err = repo.FindByID(ctx, id)
		return fromRepository(err, entity("section", id))
	})
	if err != nil {
		return nil, err
	}
	resp := toSectionResponse(section)
	return &resp, nil
}

// DeleteSection removes the section with its questions and options.
func (s *sectionService) DeleteSection(ctx context.Context, id uint) error {
	var tree *repository.DeletedTree
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		tree, err = s.sectionRepo.WithTx(tx).DeleteCascade(ctx, id)
		return fromRepository(err, entity("section", id))
	})
	if err != nil {
		return err
	}
	log.Info().Uint("sectionID", id).Int64("questions", tree.Questions).Int64("options", tree.Options).Msg("Section deleted")
	purgeImages(s.images, tree.ImageKeys)
	return nil
}

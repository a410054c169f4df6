package service

import (
	"context"
	"fmt"

	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/lshigami/formkit/internal/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// OptionService manages single options. Every change bumps the owning
// question's version.
type OptionService interface {
	CreateOption(ctx context.Context, questionID uint, req dto.CreateOptionRequest) (*dto.OptionResponse, error)
	GetOption(ctx context.Context, id uint) (*dto.OptionResponse, error)
	ListOptions(ctx context.Context, questionID uint) ([]dto.OptionResponse, error)
	UpdateOption(ctx context.Context, id uint, req dto.UpdateOptionRequest) (*dto.OptionResponse, error)
	DeleteOption(ctx context.Context, id uint) error
}

type optionService struct {
	db           *gorm.DB
	questionRepo repository.QuestionRepository
	optionRepo   repository.OptionRepository
	images       *storage.ImageStore
}

func NewOptionService(db *gorm.DB, questionRepo repository.QuestionRepository, optionRepo repository.OptionRepository, images *storage.ImageStore) OptionService {
	return &optionService{db: db, questionRepo: questionRepo, optionRepo: optionRepo, images: images}
}

func (s *optionService) CreateOption(ctx context.Context, questionID uint, req dto.CreateOptionRequest) (*dto.OptionResponse, error) {
	option := model.Option{QuestionID: questionID, Text: req.Text}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		questions := s.questionRepo.WithTx(tx)
		question, err := questions.FindByID(ctx, questionID)
		if err != nil {
			return fromRepository(err, entity("question", questionID))
		}
		if !question.Type.HasOptions() {
			return NewInvalidStateError(fmt.Sprintf("question %d of type %s cannot have options", questionID, question.Type))
		}
		if err := questions.BumpVersion(ctx, questionID); err != nil {
			return fromRepository(err, entity("question", questionID))
		}
		return s.optionRepo.WithTx(tx).Create(ctx, &option)
	})
	if err != nil {
		log.Warn().Err(err).Uint("questionID", questionID).Msg("Failed to create option")
		return nil, err
	}
	resp := toOptionResponse(&option)
	return &resp, nil
}

func (s *optionService) GetOption(ctx context.Context, id uint) (*dto.OptionResponse, error) {
	option, err := s.optionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("option", id))
	}
	resp := toOptionResponse(option)
	return &resp, nil
}

func (s *optionService) ListOptions(ctx context.Context, questionID uint) ([]dto.OptionResponse, error) {
	if _, err := s.questionRepo.FindByID(ctx, questionID); err != nil {
		return nil, fromRepository(err, entity("question", questionID))
	}
	options, err := s.optionRepo.FindAllByQuestionID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.OptionResponse, 0, len(options))
	for i := range options {
		resp = append(resp, toOptionResponse(&options[i]))
	}
	return resp, nil
}

func (s *optionService) UpdateOption(ctx context.Context, id uint, req dto.UpdateOptionRequest) (*dto.OptionResponse, error) {
	var option *model.Option
	err := s.db.Transaction(func(tx *gorm.DB) error {
		options := s.optionRepo.WithTx(tx)
		current, err := options.FindByID(ctx, id)
		if err != nil {
			return fromRepository(err, entity("option", id))
		}
		if err := s.questionRepo.WithTx(tx).BumpVersion(ctx, current.QuestionID); err != nil {
			return fromRepository(err, entity("question", current.QuestionID))
		}
		if err := options.UpdateText(ctx, id, req.Text); err != nil {
			return fromRepository(err, entity("option", id))
		}
		option, err = options.FindByID(ctx, id)
		return fromRepository(err, entity("option", id))
	})
	if err != nil {
		return nil, err
	}
	resp := toOptionResponse(option)
	return &resp, nil
}

func (s *optionService) DeleteOption(ctx context.Context, id uint) error {
	var tree *repository.DeletedTree
	err := s.db.Transaction(func(tx *gorm.DB) error {
		options := s.optionRepo.WithTx(tx)
		current, err := options.FindByID(ctx, id)
		if err != nil {
			return fromRepository(err, entity("option", id))
		}
		if err := s.questionRepo.WithTx(tx).BumpVersion(ctx, current.QuestionID); err != nil {
			return fromRepository(err, entity("question", current.QuestionID))
		}
		tree, err = options.Delete(ctx, id)
		return fromRepository(err, entity("option", id))
	})
	if err != nil {
		return err
	}
	purgeImages(s.images, tree.ImageKeys)
	return nil
}

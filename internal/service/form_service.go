package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/lshigami/formkit/internal/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const publishAttempts = 3

type FormService interface {
	CreateForm(ctx context.Context, ownerID uint, req dto.CreateFormRequest) (*dto.FormResponse, error)
	GetForm(ctx context.Context, id uint) (*dto.FormResponse, error)
	ListForms(ctx context.Context, ownerID uint) ([]dto.FormResponse, error)
	UpdateForm(ctx context.Context, id uint, req dto.UpdateFormRequest) (*dto.FormResponse, error)
	DeleteForm(ctx context.Context, id uint) error
	PublishForm(ctx context.Context, id uint) (*dto.PublishResponse, error)
	GetFormComplete(ctx context.Context, id uint) (*dto.FormCompleteResponse, error)
}

type formService struct {
	db          *gorm.DB // For transactions
	formRepo    repository.FormRepository
	sectionRepo repository.SectionRepository
	userRepo    repository.UserRepository
	images      *storage.ImageStore
	settings    Settings
	newToken    func() string
	now         func() time.Time
}

func NewFormService(
	db *gorm.DB,
	formRepo repository.FormRepository,
	sectionRepo repository.SectionRepository,
	userRepo repository.UserRepository,
	images *storage.ImageStore,
	settings Settings,
) FormService {
	return &formService{
		db:          db,
		formRepo:    formRepo,
		sectionRepo: sectionRepo,
		userRepo:    userRepo,
		images:      images,
		settings:    settings,
		newToken:    uuid.NewString,
		now:         time.Now,
	}
}

// CreateForm stores the form together with its default section.
func (s *formService) CreateForm(ctx context.Context, ownerID uint, req dto.CreateFormRequest) (*dto.FormResponse, error) {
	form := model.Form{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     ownerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.WithTx(tx).FindByID(ctx, ownerID); err != nil {
			return fromRepository(err, entity("user", ownerID))
		}
		if err := s.formRepo.WithTx(tx).Create(ctx, &form); err != nil {
			return err
		}
		section := model.Section{FormID: form.ID, Title: model.DefaultSectionTitle}
		return s.sectionRepo.WithTx(tx).Create(ctx, &section)
	})
	if err != nil {
		log.Error().Err(err).Uint("ownerID", ownerID).Msg("Failed to create form")
		return nil, err
	}

	log.Info().Uint("formID", form.ID).Uint("ownerID", ownerID).Msg("Form created")
	resp := toFormResponse(&form, s.settings.PublicBaseURL)
	return &resp, nil
}

func (s *formService) GetForm(ctx context.Context, id uint) (*dto.FormResponse, error) {
	form, err := s.formRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("form", id))
	}
	resp := toFormResponse(form, s.settings.PublicBaseURL)
	return &resp, nil
}

func (s *formService) ListForms(ctx context.Context, ownerID uint) ([]dto.FormResponse, error) {
	forms, err := s.formRepo.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FormResponse, 0, len(forms))
	for i := range forms {
		resp = append(resp, toFormResponse(&forms[i], s.settings.PublicBaseURL))
	}
	return resp, nil
}

// UpdateForm applies only the fields present in req.
func (s *formService) UpdateForm(ctx context.Context, id uint, req dto.UpdateFormRequest) (*dto.FormResponse, error) {
	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	var form *model.Form
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.formRepo.WithTx(tx)
		if err := repo.Updates(ctx, id, fields); err != nil {
			return fromRepository(err, entity("form", id))
		}
		var err error
		form, err = repo.FindByID(ctx, id)
		return fromRepository(err, entity("form", id))
	})
	if err != nil {
		return nil, err
	}
	resp := toFormResponse(form, s.settings.PublicBaseURL)
	return &resp, nil
}

// DeleteForm removes the form and its whole authoring tree. Submitted
// responses are kept.
func (s *formService) DeleteForm(ctx context.Context, id uint) error {
	var tree *repository.DeletedTree
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		tree, err = s.formRepo.WithTx(tx).DeleteCascade(ctx, id)
		return fromRepository(err, entity("form", id))
	})
	if err != nil {
		return err
	}
	log.Info().Uint("formID", id).
		Int64("sections", tree.Sections).
		Int64("questions", tree.Questions).
		Int64("options", tree.Options).
		Msg("Form deleted")
	purgeImages(s.images, tree.ImageKeys)
	return nil
}

// PublishForm issues the response token once. Publishing again returns the
// link already issued.
func (s *formService) PublishForm(ctx context.Context, id uint) (*dto.PublishResponse, error) {
	var token string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.formRepo.WithTx(tx)
		form, err := repo.FindByID(ctx, id)
		if err != nil {
			return fromRepository(err, entity("form", id))
		}
		if form.IsPublished() {
			token = *form.ResponseToken
			return nil
		}
		for attempt := 1; attempt <= publishAttempts; attempt++ {
			candidate := s.newToken()
			var won bool
			// savepoint, so a unique violation does not abort the outer transaction
			err := tx.Transaction(func(sp *gorm.DB) error {
				var err error
				won, err = s.formRepo.WithTx(sp).SetResponseToken(ctx, id, candidate, s.now())
				return err
			})
			if errors.Is(err, repository.ErrDuplicate) {
				log.Warn().Uint("formID", id).Int("attempt", attempt).Msg("Response token collision, retrying")
				continue
			}
			if err != nil {
				return err
			}
			if won {
				token = candidate
				return nil
			}
			// another publisher got there first
			form, err = repo.FindByID(ctx, id)
			if err != nil {
				return fromRepository(err, entity("form", id))
			}
			if form.IsPublished() {
				token = *form.ResponseToken
				return nil
			}
		}
		return errors.New("could not allocate a unique response token")
	})
	if err != nil {
		log.Error().Err(err).Uint("formID", id).Msg("Failed to publish form")
		return nil, err
	}
	return &dto.PublishResponse{
		Link:  model.ResponseLink(s.settings.PublicBaseURL, token),
		Token: token,
	}, nil
}

func (s *formService) GetFormComplete(ctx context.Context, id uint) (*dto.FormCompleteResponse, error) {
	form, err := s.formRepo.FindTreeByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("form", id))
	}
	resp := toFormComplete(form, s.settings.PublicBaseURL)
	return &resp, nil
}

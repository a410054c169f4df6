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

type QuestionService interface {
	CreateQuestion(ctx context.Context, sectionID uint, req dto.CreateQuestionRequest) (*dto.QuestionResponse, error)
	GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponse, error)
	UpdateQuestion(ctx context.Context, id uint, req dto.UpdateQuestionRequest) (*dto.QuestionResponse, error)
	DeleteQuestion(ctx context.Context, id uint) error
	MoveQuestion(ctx context.Context, id, sectionID uint) (*dto.QuestionResponse, error)
}

type questionService struct {
	db           *gorm.DB
	sectionRepo  repository.SectionRepository
	questionRepo repository.QuestionRepository
	optionRepo   repository.OptionRepository
	images       *storage.ImageStore
}

func NewQuestionService(
	db *gorm.DB,
	sectionRepo repository.SectionRepository,
	questionRepo repository.QuestionRepository,
	optionRepo repository.OptionRepository,
	images *storage.ImageStore,
) QuestionService {
	return &questionService{
		db:           db,
		sectionRepo:  sectionRepo,
		questionRepo: questionRepo,
		optionRepo:   optionRepo,
		images:       images,
	}
}

func parseType(s string) (model.QuestionType, error) {
	qt, err := model.ParseQuestionType(s)
	if err != nil {
		return "", &Error{Code: ErrorInvalidInput, Message: fmt.Sprintf("unknown question type %q", s), Err: err}
	}
	return qt, nil
}

// CreateQuestion stores the question and, for choice types, its options in
// request order. Options sent for other types are dropped.
func (s *questionService) CreateQuestion(ctx context.Context, sectionID uint, req dto.CreateQuestionRequest) (*dto.QuestionResponse, error) {
	qt, err := parseType(req.Type)
	if err != nil {
		return nil, err
	}

	question := model.Question{
		SectionID:   sectionID,
		Title:       req.Title,
		Description: req.Description,
		Type:        qt,
		IsRequired:  req.IsRequired,
		Version:     1,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.sectionRepo.WithTx(tx).FindByID(ctx, sectionID); err != nil {
			return fromRepository(err, entity("section", sectionID))
		}
		repo := s.questionRepo.WithTx(tx)
		if req.Order != nil {
			question.Order = *req.Order
		} else {
			next, err := repo.NextOrder(ctx, sectionID)
			if err != nil {
				return err
			}
			question.Order = next
		}
		if err := repo.Create(ctx, &question); err != nil {
			return err
		}

		if !qt.HasOptions() {
			if len(req.Options) > 0 {
				log.Warn().Uint("questionID", question.ID).Str("type", string(qt)).
					Int("options", len(req.Options)).Msg("Ignoring options for non-choice question")
			}
			return nil
		}
		options := make([]model.Option, 0, len(req.Options))
		for _, in := range req.Options {
			options = append(options, model.Option{QuestionID: question.ID, Text: in.Text})
		}
		if err := s.optionRepo.WithTx(tx).CreateBatch(ctx, options); err != nil {
			return err
		}
		question.Options = options
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("sectionID", sectionID).Msg("Failed to create question")
		return nil, err
	}

	resp := toQuestionResponse(&question)
	return &resp, nil
}

func (s *questionService) GetQuestion(ctx context.Context, id uint) (*dto.QuestionResponse, error) {
	question, err := s.questionRepo.FindByIDWithOptions(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("question", id))
	}
	resp := toQuestionResponse(question)
	return &resp, nil
}

// UpdateQuestion replaces the scalar fields and reconciles options against
// req.Options. The write is a compare-and-swap on the question version, so a
// concurrent update makes one of the two fail with a conflict.
func (s *questionService) UpdateQuestion(ctx context.Context, id uint, req dto.UpdateQuestionRequest) (*dto.QuestionResponse, error) {
	qt, err := parseType(req.Type)
	if err != nil {
		return nil, err
	}

	var purged []string
	var question *model.Question
	err = s.db.Transaction(func(tx *gorm.DB) error {
		questions := s.questionRepo.WithTx(tx)
		options := s.optionRepo.WithTx(tx)

		current, err := questions.FindByIDWithOptions(ctx, id)
		if err != nil {
			return fromRepository(err, entity("question", id))
		}
		if req.Version != nil && *req.Version != current.Version {
			return NewConflictError(fmt.Sprintf("question %d is at version %d, not %d", id, current.Version, *req.Version))
		}

		var plan optionPlan
		switch {
		case !qt.HasOptions():
			if len(req.Options) > 0 {
				log.Warn().Uint("questionID", id).Str("type", string(qt)).Msg("Ignoring options for non-choice question")
			}
			for _, o := range current.Options {
				plan.Delete = append(plan.Delete, o.ID)
			}
		case req.Options != nil:
			plan, err = planOptionReconciliation(current.Options, req.Options)
			if err != nil {
				return err
			}
		}

		fields := map[string]interface{}{
			"title":         req.Title,
			"description":   req.Description,
			"question_type": qt,
			"is_required":   req.IsRequired,
			"display_order": req.Order,
		}
		if err := questions.CompareAndSwap(ctx, id, current.Version, fields); err != nil {
			return fromRepository(err, entity("question", id))
		}

		if plan.empty() {
			return nil
		}
		deleted, err := options.DeleteByIDs(ctx, plan.Delete)
		if err != nil {
			return err
		}
		purged = deleted.ImageKeys
		for _, o := range plan.Update {
			if err := options.UpdateText(ctx, o.ID, o.Text); err != nil {
				return fromRepository(err, entity("option", o.ID))
			}
		}
		for i := range plan.Insert {
			plan.Insert[i].QuestionID = id
		}
		if err := options.CreateBatch(ctx, plan.Insert); err != nil {
			return err
		}
		log.Debug().Uint("questionID", id).
			Int("deleted", len(plan.Delete)).
			Int("updated", len(plan.Update)).
			Int("inserted", len(plan.Insert)).
			Msg("Options reconciled")
		return nil
	})
	if err != nil {
		if !IsCode(err, ErrorNotFound) {
			log.Error().Err(err).Uint("questionID", id).Msg("Failed to update question")
		}
		return nil, err
	}
	purgeImages(s.images, purged)

	question, err = s.questionRepo.FindByIDWithOptions(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("question", id))
	}
	resp := toQuestionResponse(question)
	return &resp, nil
}

// MoveQuestion reparents the question under sectionID and appends it after
// the target section's last question. Moving into its own section keeps the
// current position.
func (s *questionService) MoveQuestion(ctx context.Context, id, sectionID uint) (*dto.QuestionResponse, error) {
	var from uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		questions := s.questionRepo.WithTx(tx)
		if _, err := s.sectionRepo.WithTx(tx).FindByID(ctx, sectionID); err != nil {
			return fromRepository(err, entity("section", sectionID))
		}
		current, err := questions.FindByID(ctx, id)
		if err != nil {
			return fromRepository(err, entity("question", id))
		}
		from = current.SectionID
		if from == sectionID {
			return nil
		}
		next, err := questions.NextOrder(ctx, sectionID)
		if err != nil {
			return err
		}
		fields := map[string]interface{}{
			"section_id":    sectionID,
			"display_order": next,
		}
		return fromRepository(questions.CompareAndSwap(ctx, id, current.Version, fields), entity("question", id))
	})
	if err != nil {
		if !IsCode(err, ErrorNotFound) {
			log.Error().Err(err).Uint("questionID", id).Uint("sectionID", sectionID).Msg("Failed to move question")
		}
		return nil, err
	}
	if from != sectionID {
		log.Info().Uint("questionID", id).Uint("from", from).Uint("to", sectionID).Msg("Question moved")
	}

	question, err := s.questionRepo.FindByIDWithOptions(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("question", id))
	}
	resp := toQuestionResponse(question)
	return &resp, nil
}

// DeleteQuestion removes the question and its options.
func (s *questionService) DeleteQuestion(ctx context.Context, id uint) error {
	var tree *repository.DeletedTree
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		tree, err = s.questionRepo.WithTx(tx).DeleteCascade(ctx, id)
		return fromRepository(err, entity("question", id))
	})
	if err != nil {
		return err
	}
	log.Info().Uint("questionID", id).Int64("options", tree.Options).Msg("Question deleted")
	purgeImages(s.images, tree.ImageKeys)
	return nil
}

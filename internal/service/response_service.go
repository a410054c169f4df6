package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResponseService interface {
	// SubmitResponse stores answers for the form published under token.
	// body must be a JSON object keyed by question id.
	SubmitResponse(ctx context.Context, token string, userID *uint, body []byte) (*dto.SubmissionResponse, error)
	GetFormByToken(ctx context.Context, token string) (*dto.FormCompleteResponse, error)
	CountResponses(ctx context.Context, formID uint) (int64, error)
	ListResponses(ctx context.Context, formID uint) ([]dto.SubmissionResponse, error)
	GetResponse(ctx context.Context, id uint) (*dto.SubmissionResponse, error)
}

type responseService struct {
	db           *gorm.DB
	formRepo     repository.FormRepository
	questionRepo repository.QuestionRepository
	responseRepo repository.ResponseRepository
	settings     Settings
	now          func() time.Time
}

func NewResponseService(
	db *gorm.DB,
	formRepo repository.FormRepository,
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	settings Settings,
) ResponseService {
	return &responseService{
		db:           db,
		formRepo:     formRepo,
		questionRepo: questionRepo,
		responseRepo: responseRepo,
		settings:     settings,
		now:          time.Now,
	}
}

func formByTokenNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &Error{Code: ErrorNotFound, Message: "no published form for this link", Err: err}
	}
	return err
}

// tagAnswers tags every submitted value with the shape its question expects.
// Keys that match no question of the form are kept, marked unknown.
func tagAnswers(raw []model.RawAnswer, questions []model.Question) (entries []model.AnswerEntry, unknown, malformed int) {
	types := make(map[uint]model.QuestionType, len(questions))
	for _, q := range questions {
		types[q.ID] = q.Type
	}
	entries = make([]model.AnswerEntry, 0, len(raw))
	for _, a := range raw {
		var value model.AnswerValue
		var qt model.QuestionType
		found := false
		if id, valid := model.ParseQuestionKey(a.Key); valid {
			qt, found = types[id]
		}
		if found {
			value = model.TagAnswer(qt, a.Value)
		} else {
			value = model.UnknownQuestionAnswer(a.Value)
			unknown++
		}
		if value.Kind == model.AnswerKindMalformed {
			malformed++
		}
		entries = append(entries, model.AnswerEntry{QuestionKey: a.Key, Value: value})
	}
	return entries, unknown, malformed
}

func (s *responseService) SubmitResponse(ctx context.Context, token string, userID *uint, body []byte) (*dto.SubmissionResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, NewNotFoundError("no published form for this link")
	}
	raw, err := model.DecodeRawAnswers(body)
	if err != nil {
		return nil, &Error{Code: ErrorInvalidInput, Message: "answers must be a JSON object keyed by question id", Err: err}
	}

	var response model.Response
	err = s.db.Transaction(func(tx *gorm.DB) error {
		form, err := s.formRepo.WithTx(tx).FindByResponseToken(ctx, token)
		if err != nil {
			return formByTokenNotFound(err)
		}
		questions, err := s.questionRepo.WithTx(tx).FindAllByFormID(ctx, form.ID)
		if err != nil {
			return fromRepository(err, entity("form", form.ID))
		}

		entries, unknown, malformed := tagAnswers(raw, questions)
		if unknown > 0 || malformed > 0 {
			log.Warn().Uint("formID", form.ID).Int("unknownQuestions", unknown).Int("malformed", malformed).
				Msg("Accepting submission with answers that do not fit the form")
		}
		data, err := model.EncodeAnswers(entries)
		if err != nil {
			return err
		}

		response = model.Response{
			FormID:       form.ID,
			UserID:       userID,
			ResponseData: datatypes.JSON(data),
			SubmittedAt:  s.now().UTC(),
		}
		return s.responseRepo.WithTx(tx).Create(ctx, &response)
	})
	if err != nil {
		if !IsCode(err, ErrorNotFound) {
			log.Error().Err(err).Msg("Failed to store response")
		}
		return nil, err
	}

	log.Info().Uint("responseID", response.ID).Uint("formID", response.FormID).Int("answers", len(raw)).Msg("Response submitted")
	resp, err := toSubmissionResponse(&response)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *responseService) GetFormByToken(ctx context.Context, token string) (*dto.FormCompleteResponse, error) {
	form, err := s.formRepo.FindByResponseToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return nil, formByTokenNotFound(err)
	}
	tree, err := s.formRepo.FindTreeByID(ctx, form.ID)
	if err != nil {
		return nil, fromRepository(err, entity("form", form.ID))
	}
	resp := toFormComplete(tree, s.settings.PublicBaseURL)
	return &resp, nil
}

// CountResponses also counts responses of forms that were deleted since.
func (s *responseService) CountResponses(ctx context.Context, formID uint) (int64, error) {
	return s.responseRepo.CountByFormID(ctx, formID)
}

func (s *responseService) ListResponses(ctx context.Context, formID uint) ([]dto.SubmissionResponse, error) {
	responses, err := s.responseRepo.FindAllByFormID(ctx, formID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubmissionResponse, 0, len(responses))
	for i := range responses {
		r, err := toSubmissionResponse(&responses[i])
		if err != nil {
			log.Error().Err(err).Uint("responseID", responses[i].ID).Msg("Stored response is unreadable")
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *responseService) GetResponse(ctx context.Context, id uint) (*dto.SubmissionResponse, error) {
	response, err := s.responseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fromRepository(err, entity("response", id))
	}
	resp, err := toSubmissionResponse(response)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

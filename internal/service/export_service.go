package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/repository"
	"github.com/rs/zerolog/log"
)

// CSVHeader is the first row of every export.
var CSVHeader = []string{
	"response_id",
	"user_id",
	"section_id",
	"question_id",
	"question_title",
	"question_description",
	"answer_description",
}

type ExportSummary struct {
	Responses      int
	Rows           int
	SkippedAnswers int // keys that match no question
	DeletedOptions int
	Malformed      int
}

type ExportService interface {
	// Prepare loads the form and its questions. It fails with NOT_FOUND
	// before anything is written, so callers can still choose a status code.
	Prepare(ctx context.Context, formID uint) (*CSVExport, error)
}

type exportService struct {
	formRepo     repository.FormRepository
	questionRepo repository.QuestionRepository
	responseRepo repository.ResponseRepository
	settings     Settings
}

func NewExportService(
	formRepo repository.FormRepository,
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	settings Settings,
) ExportService {
	return &exportService{
		formRepo:     formRepo,
		questionRepo: questionRepo,
		responseRepo: responseRepo,
		settings:     settings,
	}
}

// CSVExport resolves stored answers of one form into rows. It is bound to a
// single request and must not be reused.
type CSVExport struct {
	FormID    uint
	Filename  string
	questions map[uint]*model.Question
	options   map[uint]model.Option
	responses repository.ResponseRepository
	settings  Settings
}

func (s *exportService) Prepare(ctx context.Context, formID uint) (*CSVExport, error) {
	form, err := s.formRepo.FindByID(ctx, formID)
	if err != nil {
		return nil, fromRepository(err, entity("form", formID))
	}
	questions, err := s.questionRepo.FindAllByFormID(ctx, formID)
	if err != nil {
		return nil, fromRepository(err, entity("form", formID))
	}

	e := &CSVExport{
		FormID:    formID,
		Filename:  ExportFilename(form.Title, formID),
		questions: make(map[uint]*model.Question, len(questions)),
		options:   map[uint]model.Option{},
		responses: s.responseRepo,
		settings:  s.settings,
	}
	for i := range questions {
		q := &questions[i]
		e.questions[q.ID] = q
		for _, o := range q.Options {
			e.options[o.ID] = o
		}
	}
	return e, nil
}

// ExportFilename is "<slug>_responses.csv" for the form title.
func ExportFilename(title string, formID uint) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(title) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "_")
	if slug == "" {
		slug = "form_" + strconv.FormatUint(uint64(formID), 10)
	}
	return slug + "_responses.csv"
}

// Write streams the header and one row per answered question of every
// response, in response id order and then submission order. Rows that cannot
// be resolved are logged and skipped or rendered with a placeholder.
func (e *CSVExport) Write(ctx context.Context, out io.Writer) (*ExportSummary, error) {
	w := csv.NewWriter(out)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}

	summary := &ExportSummary{}
	err := e.responses.EachBatchByFormID(ctx, e.FormID, e.settings.ExportBatchSize, func(batch []model.Response) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := range batch {
			if err := e.writeResponse(w, &batch[i], summary); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	})
	if err != nil {
		log.Error().Err(err).Uint("formID", e.FormID).Msg("CSV export aborted")
		return summary, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return summary, err
	}

	log.Info().Uint("formID", e.FormID).
		Int("responses", summary.Responses).
		Int("rows", summary.Rows).
		Int("skipped", summary.SkippedAnswers).
		Int("deletedOptions", summary.DeletedOptions).
		Int("malformed", summary.Malformed).
		Msg("CSV export finished")
	return summary, nil
}

func (e *CSVExport) writeResponse(w *csv.Writer, r *model.Response, summary *ExportSummary) error {
	summary.Responses++
	entries, err := model.DecodeAnswers(r.ResponseData)
	if err != nil {
		log.Warn().Err(err).Uint("responseID", r.ID).Msg("Skipping unreadable response")
		summary.Malformed++
		return nil
	}

	userID := ""
	if r.UserID != nil {
		userID = strconv.FormatUint(uint64(*r.UserID), 10)
	}
	for _, entry := range entries {
		q := e.lookupQuestion(entry.QuestionKey)
		if q == nil {
			log.Warn().Uint("responseID", r.ID).Str("questionKey", entry.QuestionKey).Msg("Skipping answer to unknown question")
			summary.SkippedAnswers++
			continue
		}
		description := ""
		if q.Description != nil {
			description = *q.Description
		}
		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			userID,
			strconv.FormatUint(uint64(q.SectionID), 10),
			strconv.FormatUint(uint64(q.ID), 10),
			q.Title,
			description,
			e.describe(r.ID, q, entry, summary),
		}
		if err := w.Write(row); err != nil {
			return err
		}
		summary.Rows++
	}
	return nil
}

func (e *CSVExport) lookupQuestion(key string) *model.Question {
	id, ok := model.ParseQuestionKey(key)
	if !ok {
		return nil
	}
	return e.questions[id]
}

func (e *CSVExport) describe(responseID uint, q *model.Question, entry model.AnswerEntry, summary *ExportSummary) string {
	value := entry.Value
	if value.Kind == model.AnswerKindUnknownQuestion {
		// the key matched nothing at submission but does now
		value = model.TagAnswer(q.Type, value.Raw)
	}

	switch value.Kind {
	case model.AnswerKindText:
		return value.Text
	case model.AnswerKindSingleChoice:
		if value.OptionID == nil {
			break
		}
		return e.optionText(responseID, q, *value.OptionID, summary)
	case model.AnswerKindMultiChoice:
		texts := make([]string, 0, len(value.OptionIDs))
		for _, id := range value.OptionIDs {
			texts = append(texts, e.optionText(responseID, q, id, summary))
		}
		encoded, err := json.Marshal(texts)
		if err != nil {
			break
		}
		return string(encoded)
	}

	log.Warn().Uint("responseID", responseID).Str("questionKey", entry.QuestionKey).
		Str("kind", string(value.Kind)).RawJSON("raw", rawOrNull(value.Raw)).
		Msg("Answer does not fit its question")
	summary.Malformed++
	return e.settings.MalformedAnswerPlaceholder
}

// optionText resolves an option of q. An id that exists under another
// question of the form is not accepted as an answer to q.
func (e *CSVExport) optionText(responseID uint, q *model.Question, optionID uint, summary *ExportSummary) string {
	o, ok := e.options[optionID]
	if !ok {
		log.Warn().Uint("responseID", responseID).Uint("questionID", q.ID).Uint("optionID", optionID).
			Msg("Answer refers to a deleted option")
		summary.DeletedOptions++
		return e.settings.DeletedOptionPlaceholder
	}
	if o.QuestionID != q.ID {
		log.Warn().Uint("responseID", responseID).Uint("questionID", q.ID).Uint("optionID", optionID).
			Uint("ownerID", o.QuestionID).Msg("Answer refers to an option of another question")
		summary.Malformed++
		return e.settings.MalformedAnswerPlaceholder
	}
	return o.Text
}

func rawOrNull(raw json.RawMessage) []byte {
	if len(raw) == 0 || !json.Valid(raw) {
		return []byte("null")
	}
	return raw
}

// String summarizes the export for CLI output.
func (s ExportSummary) String() string {
	return fmt.Sprintf("%d responses, %d rows, %d skipped answers, %d deleted options, %d malformed",
		s.Responses, s.Rows, s.SkippedAnswers, s.DeletedOptions, s.Malformed)
}

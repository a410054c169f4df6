package service

import (
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
	"github.com/lshigami/formkit/internal/storage"
	"github.com/rs/zerolog/log"
)

// ImageURL is where the image of an entity is served.
func ImageURL(kind model.ImageKind, id uint) string {
	return fmt.Sprintf("/api/v1/images/%s/%d", kind, id)
}

func imageURL(kind model.ImageKind, id uint, key *string) *string {
	if key == nil {
		return nil
	}
	u := ImageURL(kind, id)
	return &u
}

func toUserResponse(u *model.User) dto.UserResponse {
	var resp dto.UserResponse
	copier.Copy(&resp, u)
	return resp
}

func toFormResponse(f *model.Form, baseURL string) dto.FormResponse {
	var resp dto.FormResponse
	copier.Copy(&resp, f)
	resp.ImageURL = imageURL(model.ImageKindForm, f.ID, f.ImageKey)
	if f.IsPublished() {
		link := model.ResponseLink(baseURL, *f.ResponseToken)
		resp.ResponseLink = &link
	}
	return resp
}

func toSectionResponse(s *model.Section) dto.SectionResponse {
	var resp dto.SectionResponse
	copier.Copy(&resp, s)
	resp.ImageURL = imageURL(model.ImageKindSection, s.ID, s.ImageKey)
	return resp
}

func toOptionResponse(o *model.Option) dto.OptionResponse {
	return dto.OptionResponse{
		ID:         o.ID,
		QuestionID: o.QuestionID,
		Text:       o.Text,
		ImageURL:   imageURL(model.ImageKindOption, o.ID, o.ImageKey),
	}
}

func toQuestionResponse(q *model.Question) dto.QuestionResponse {
	resp := dto.QuestionResponse{
		ID:          q.ID,
		SectionID:   q.SectionID,
		Title:       q.Title,
		Description: q.Description,
		Type:        string(q.Type),
		IsRequired:  q.IsRequired,
		Order:       q.Order,
		Version:     q.Version,
		ImageURL:    imageURL(model.ImageKindQuestion, q.ID, q.ImageKey),
		Options:     make([]dto.OptionResponse, 0, len(q.Options)),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	for i := range q.Options {
		resp.Options = append(resp.Options, toOptionResponse(&q.Options[i]))
	}
	return resp
}

func toSectionComplete(s *model.Section) dto.SectionCompleteResponse {
	resp := dto.SectionCompleteResponse{
		SectionResponse: toSectionResponse(s),
		Questions:       make([]dto.QuestionResponse, 0, len(s.Questions)),
	}
	for i := range s.Questions {
		resp.Questions = append(resp.Questions, toQuestionResponse(&s.Questions[i]))
	}
	return resp
}

func toFormComplete(f *model.Form, baseURL string) dto.FormCompleteResponse {
	resp := dto.FormCompleteResponse{
		FormResponse: toFormResponse(f, baseURL),
		Sections:     make([]dto.SectionCompleteResponse, 0, len(f.Sections)),
	}
	for i := range f.Sections {
		resp.Sections = append(resp.Sections, toSectionComplete(&f.Sections[i]))
	}
	return resp
}

func toSubmissionResponse(r *model.Response) (dto.SubmissionResponse, error) {
	entries, err := model.DecodeAnswers(r.ResponseData)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("decode response %d: %w", r.ID, err)
	}
	resp := dto.SubmissionResponse{
		ID:          r.ID,
		FormID:      r.FormID,
		UserID:      r.UserID,
		Answers:     make([]dto.AnswerResponse, 0, len(entries)),
		SubmittedAt: r.SubmittedAt,
	}
	for _, e := range entries {
		a := dto.AnswerResponse{
			QuestionKey: e.QuestionKey,
			Kind:        string(e.Value.Kind),
			OptionID:    e.Value.OptionID,
			OptionIDs:   e.Value.OptionIDs,
			Raw:         e.Value.Raw,
		}
		if e.Value.Kind == model.AnswerKindText {
			text := e.Value.Text
			a.Text = &text
		}
		resp.Answers = append(resp.Answers, a)
	}
	return resp, nil
}

// purgeImages removes stored blobs of deleted rows. Failures are logged only;
// the rows are already gone.
func purgeImages(store *storage.ImageStore, keys []string) {
	if store == nil || len(keys) == 0 {
		return
	}
	log.Debug().Int("count", len(keys)).Msg("Purging images of deleted entities")
	store.DeleteAll(keys)
}

package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v\n%s", err, data)
	}
	return records
}

func TestExportCSVResolvesAnswers(t *testing.T) {
	env := newTestEnv(t)
	form := env.form(t, "Colors")
	section := env.defaultSection(t, form.ID)

	desc := "your favourite"
	favourite, err := env.questions.CreateQuestion(ctx, section, dto.CreateQuestionRequest{
		Title: "Favourite", Description: &desc, Type: string(model.QuestionTypeDropdown),
		Options: []dto.OptionInput{{Text: "Blue"}, {Text: "Gone"}},
	})
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	palette := env.question(t, section, model.QuestionTypeCheckboxes, "Red", "Green")
	comment := env.question(t, section, model.QuestionTypeParagraph)
	stale := env.question(t, section, model.QuestionTypeText)

	pub, err := env.forms.PublishForm(ctx, form.ID)
	if err != nil {
		t.Fatalf("PublishForm: %v", err)
	}
	blue, gone := favourite.Options[0].ID, favourite.Options[1].ID
	red, green := palette.Options[0].ID, palette.Options[1].ID

	submissions := []string{
		fmt.Sprintf(`{"%d": %d, "%d": [%d, %d], "%d": "nice"}`, favourite.ID, blue, palette.ID, red, green, comment.ID),
		fmt.Sprintf(`{"%d": "later", "%d": %d, "%d": {"odd": true}}`, stale.ID, favourite.ID, gone, palette.ID),
		fmt.Sprintf(`{"999": "nobody", "%d": null}`, comment.ID),
	}
	userID := env.user(t, "resp")
	for i, body := range submissions {
		var uid *uint
		if i == 0 {
			uid = &userID
		}
		if _, err := env.responses.SubmitResponse(ctx, pub.Token, uid, []byte(body)); err != nil {
			t.Fatalf("SubmitResponse %d: %v", i, err)
		}
	}

	// edits after submission
	if err := env.options.DeleteOption(ctx, gone); err != nil {
		t.Fatalf("DeleteOption: %v", err)
	}
	if err := env.questions.DeleteQuestion(ctx, stale.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}

	export, err := env.exports.Prepare(ctx, form.ID)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	var buf bytes.Buffer
	summary, err := export.Write(ctx, &buf)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows := readCSV(t, buf.Bytes())
	if got := rows[0]; fmt.Sprint(got) != fmt.Sprint(CSVHeader) {
		t.Fatalf("header = %v", got)
	}
	s := itoa(section)
	want := [][]string{
		{"1", itoa(userID), s, itoa(favourite.ID), "Favourite", "your favourite", "Blue"},
		{"1", itoa(userID), s, itoa(palette.ID), palette.Title, "", `["Red","Green"]`},
		{"1", itoa(userID), s, itoa(comment.ID), comment.Title, "", "nice"},
		{"2", "", s, itoa(favourite.ID), "Favourite", "your favourite", "[deleted option]"},
		{"2", "", s, itoa(palette.ID), palette.Title, "", "[malformed answer]"},
		{"3", "", s, itoa(comment.ID), comment.Title, "", ""},
	}
	body := rows[1:]
	if len(body) != len(want) {
		t.Fatalf("expected %d rows, got %d:\n%s", len(want), len(body), buf.String())
	}
	for i := range want {
		if fmt.Sprint(body[i]) != fmt.Sprint(want[i]) {
			t.Errorf("row %d:\n got %q\nwant %q", i, body[i], want[i])
		}
	}

	if summary.Responses != 3 || summary.Rows != 6 || summary.SkippedAnswers != 2 ||
		summary.DeletedOptions != 1 || summary.Malformed != 1 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestExportRejectsOptionsOfOtherQuestions(t *testing.T) {
	env := newTestEnv(t)
	form := env.form(t, "Scoped")
	section := env.defaultSection(t, form.ID)
	size := env.question(t, section, model.QuestionTypeDropdown, "Small", "Large")
	colour := env.question(t, section, model.QuestionTypeCheckboxes, "Red", "Blue")
	pub, err := env.forms.PublishForm(ctx, form.ID)
	if err != nil {
		t.Fatalf("PublishForm: %v", err)
	}

	body := fmt.Sprintf(`{"%d": %d, "%d": [%d, %d]}`,
		size.ID, colour.Options[0].ID, colour.ID, colour.Options[1].ID, size.Options[1].ID)
	if _, err := env.responses.SubmitResponse(ctx, pub.Token, nil, []byte(body)); err != nil {
		t.Fatalf("SubmitResponse: %v", err)
	}

	export, err := env.exports.Prepare(ctx, form.ID)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	var buf bytes.Buffer
	summary, err := export.Write(ctx, &buf)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	rows := readCSV(t, buf.Bytes())[1:]
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d:\n%s", len(rows), buf.String())
	}
	if got := rows[0][6]; got != "[malformed answer]" {
		t.Errorf("single choice answer = %q", got)
	}
	if got := rows[1][6]; got != `["Blue","[malformed answer]"]` {
		t.Errorf("multi choice answer = %q", got)
	}
	if summary.Malformed != 2 || summary.DeletedOptions != 0 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		title string
		id    uint
		want  string
	}{
		{"Customer Survey", 1, "customer_survey_responses.csv"},
		{"  Q3 -- results  ", 2, "q3_results_responses.csv"},
		{"Опрос", 7, "form_7_responses.csv"},
		{"", 8, "form_8_responses.csv"},
	}
	for _, tt := range tests {
		if got := ExportFilename(tt.title, tt.id); got != tt.want {
			t.Errorf("ExportFilename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

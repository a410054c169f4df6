package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestDecodeRawAnswersKeepsOrder(t *testing.T) {
	got, err := DecodeRawAnswers([]byte(`{"12": "hello", "3": 7, "40": [1, 2], "3": 9}`))
	if err != nil {
		t.Fatalf("DecodeRawAnswers returned error: %v", err)
	}
	wantKeys := []string{"12", "3", "40"}
	if len(got) != len(wantKeys) {
		t.Fatalf("expected %d answers, got %d", len(wantKeys), len(got))
	}
	for i, k := range wantKeys {
		if got[i].Key != k {
			t.Errorf("answer %d: key %q, want %q", i, got[i].Key, k)
		}
	}
	if string(got[1].Value) != "9" {
		t.Errorf("repeated key should keep last value, got %s", got[1].Value)
	}
}

func TestDecodeRawAnswersRejectsNonObject(t *testing.T) {
	for _, in := range []string{`[1,2]`, `"x"`, ``, `{"1": }`} {
		if _, err := DecodeRawAnswers([]byte(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
	if _, err := DecodeRawAnswers([]byte(`[]`)); !errors.Is(err, ErrAnswersNotObject) {
		t.Errorf("expected ErrAnswersNotObject, got %v", err)
	}
}

func TestDecodeRawAnswersRejectsTrailingData(t *testing.T) {
	for _, in := range []string{`{"1":"a"} {"junk": 1`, `{"1":"a"}{}`, `{"1":"a"} 7`, `{"1":"a"} x`} {
		if _, err := DecodeRawAnswers([]byte(in)); !errors.Is(err, ErrAnswersNotObject) {
			t.Errorf("%q: expected ErrAnswersNotObject, got %v", in, err)
		}
	}
	got, err := DecodeRawAnswers([]byte(" {\"1\": \"a\"} \n\t"))
	if err != nil || len(got) != 1 || got[0].Key != "1" {
		t.Errorf("trailing whitespace: %+v %v", got, err)
	}
}

func TestTagAnswer(t *testing.T) {
	tests := []struct {
		name string
		qt   QuestionType
		raw  string
		want AnswerValue
	}{
		{"text string", QuestionTypeText, `"hi"`, TextAnswer("hi")},
		{"text null", QuestionTypeParagraph, `null`, TextAnswer("")},
		{"rating number kept verbatim", QuestionTypeRating, `4`, TextAnswer("4")},
		{"grid object compacted", QuestionTypeCheckboxGrid, `{"r1": ["c1"] }`, TextAnswer(`{"r1":["c1"]}`)},
		{"single choice", QuestionTypeMultipleChoice, `7`, SingleChoiceAnswer(7)},
		{"dropdown", QuestionTypeDropdown, `3`, SingleChoiceAnswer(3)},
		{"single choice numeric string", QuestionTypeMultipleChoice, `"7"`, malformed(json.RawMessage(`"7"`))},
		{"single choice float", QuestionTypeMultipleChoice, `7.5`, malformed(json.RawMessage(`7.5`))},
		{"single choice zero", QuestionTypeDropdown, `0`, malformed(json.RawMessage(`0`))},
		{"multi choice", QuestionTypeCheckboxes, `[3, 4]`, MultiChoiceAnswer(3, 4)},
		{"multi choice empty", QuestionTypeCheckboxes, `[]`, MultiChoiceAnswer()},
		{"multi choice scalar", QuestionTypeCheckboxes, `3`, malformed(json.RawMessage(`3`))},
		{"multi choice mixed", QuestionTypeCheckboxes, `[3, "a"]`, malformed(json.RawMessage(`[3, "a"]`))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TagAnswer(tt.qt, json.RawMessage(tt.raw))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TagAnswer(%s, %s) = %+v, want %+v", tt.qt, tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeAnswersPreservesOrder(t *testing.T) {
	entries := []AnswerEntry{
		{QuestionKey: "9", Value: TextAnswer("z")},
		{QuestionKey: "2", Value: SingleChoiceAnswer(5)},
		{QuestionKey: "5", Value: MultiChoiceAnswer(1, 3)},
	}
	data, err := EncodeAnswers(entries)
	if err != nil {
		t.Fatalf("EncodeAnswers: %v", err)
	}
	back, err := DecodeAnswers(data)
	if err != nil {
		t.Fatalf("DecodeAnswers: %v", err)
	}
	if !reflect.DeepEqual(back, entries) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, entries)
	}
}

func TestQuestionTypeScan(t *testing.T) {
	var qt QuestionType
	if err := qt.Scan([]byte("checkboxes")); err != nil || qt != QuestionTypeCheckboxes {
		t.Fatalf("Scan checkboxes: %v %q", err, qt)
	}
	if err := qt.Scan("essay"); !errors.Is(err, ErrUnknownQuestionType) {
		t.Fatalf("expected ErrUnknownQuestionType, got %v", err)
	}
	if _, err := QuestionType("essay").Value(); !errors.Is(err, ErrUnknownQuestionType) {
		t.Fatalf("Value should reject unknown tag, got %v", err)
	}
}

func TestQuestionTypeHasOptions(t *testing.T) {
	choice := map[QuestionType]bool{
		QuestionTypeMultipleChoice: true,
		QuestionTypeCheckboxes:     true,
		QuestionTypeDropdown:       true,
	}
	for qt := range questionTypes {
		if qt.HasOptions() != choice[qt] {
			t.Errorf("%s.HasOptions() = %v", qt, qt.HasOptions())
		}
	}
}

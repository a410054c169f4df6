package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// AnswerKind tags a stored answer with the shape chosen at submission time.
type AnswerKind string

const (
	AnswerKindText         AnswerKind = "text"
	AnswerKindSingleChoice AnswerKind = "single_choice"
	AnswerKindMultiChoice  AnswerKind = "multi_choice"
	// AnswerKindMalformed marks a value whose shape did not fit its question's type.
	AnswerKindMalformed AnswerKind = "malformed"
	// AnswerKindUnknownQuestion marks a key that matched no question of the form.
	AnswerKindUnknownQuestion AnswerKind = "unknown_question"
)

var ErrAnswersNotObject = errors.New("answers must be a JSON object")

// AnswerValue is Text | SingleChoice(optionID) | MultiChoice(optionIDs).
// Raw keeps the submitted JSON for kinds that could not be tagged.
type AnswerValue struct {
	Kind      AnswerKind      `json:"kind"`
	Text      string          `json:"text,omitempty"`
	OptionID  *uint           `json:"option_id,omitempty"`
	OptionIDs []uint          `json:"option_ids,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// AnswerEntry pairs a question key (textual question id) with its value.
type AnswerEntry struct {
	QuestionKey string      `json:"question_key"`
	Value       AnswerValue `json:"value"`
}

// RawAnswer is one key/value pair of a submitted answer object.
type RawAnswer struct {
	Key   string
	Value json.RawMessage
}

func TextAnswer(s string) AnswerValue { return AnswerValue{Kind: AnswerKindText, Text: s} }

func SingleChoiceAnswer(optionID uint) AnswerValue {
	return AnswerValue{Kind: AnswerKindSingleChoice, OptionID: &optionID}
}

func MultiChoiceAnswer(optionIDs ...uint) AnswerValue {
	return AnswerValue{Kind: AnswerKindMultiChoice, OptionIDs: append([]uint{}, optionIDs...)}
}

// DecodeRawAnswers reads a JSON object keyed by question id while keeping the
// submitted key order. A repeated key keeps its first position and last value.
func DecodeRawAnswers(data []byte) ([]RawAnswer, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswersNotObject, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrAnswersNotObject
	}

	var out []RawAnswer
	seen := map[string]int{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read answer key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, ErrAnswersNotObject
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("read answer for %q: %w", key, err)
		}
		if i, dup := seen[key]; dup {
			out[i].Value = raw
			continue
		}
		seen[key] = len(out)
		out = append(out, RawAnswer{Key: key, Value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswersNotObject, err)
	}
	// only whitespace may follow the closing brace
	if tok, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after object (%v %v)", ErrAnswersNotObject, tok, err)
	}
	return out, nil
}

// TagAnswer converts a raw submitted value into the variant expected by the
// question type. Values that do not fit are kept verbatim as malformed.
func TagAnswer(qt QuestionType, raw json.RawMessage) AnswerValue {
	switch qt.AnswerKind() {
	case AnswerKindSingleChoice:
		if id, ok := parseOptionID(raw); ok {
			return SingleChoiceAnswer(id)
		}
		return malformed(raw)
	case AnswerKindMultiChoice:
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil || items == nil {
			return malformed(raw)
		}
		ids := make([]uint, 0, len(items))
		for _, item := range items {
			id, ok := parseOptionID(item)
			if !ok {
				return malformed(raw)
			}
			ids = append(ids, id)
		}
		return MultiChoiceAnswer(ids...)
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return TextAnswer(s)
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return TextAnswer("")
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return TextAnswer(string(raw))
		}
		return TextAnswer(buf.String())
	}
}

func malformed(raw json.RawMessage) AnswerValue {
	return AnswerValue{Kind: AnswerKindMalformed, Raw: append(json.RawMessage{}, raw...)}
}

// UnknownQuestionAnswer keeps a value whose key matched no question.
func UnknownQuestionAnswer(raw json.RawMessage) AnswerValue {
	return AnswerValue{Kind: AnswerKindUnknownQuestion, Raw: append(json.RawMessage{}, raw...)}
}

// parseOptionID accepts a positive JSON integer. Strings are rejected even when
// they look numeric.
func parseOptionID(raw json.RawMessage) (uint, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] == '"' {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return 0, false
	}
	id, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// ParseQuestionKey turns a textual question key into an id.
func ParseQuestionKey(key string) (uint, bool) {
	id, err := strconv.ParseUint(key, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// EncodeAnswers serializes entries in order for Response.ResponseData.
func EncodeAnswers(entries []AnswerEntry) ([]byte, error) {
	if entries == nil {
		entries = []AnswerEntry{}
	}
	return json.Marshal(entries)
}

// DecodeAnswers reads Response.ResponseData back into ordered entries.
func DecodeAnswers(data []byte) ([]AnswerEntry, error) {
	var entries []AnswerEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

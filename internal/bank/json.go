package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pavelanni/quizzer/internal/model"
)

// questionImport is one entry of the JSON question file.
type questionImport struct {
	ID            json.RawMessage `json:"id"`
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
}

func loadJSON(path string) ([]model.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseJSON(data)
}

func parseJSON(data []byte) ([]model.Question, error) {
	var bySubject map[string][]questionImport
	if err := json.Unmarshal(data, &bySubject); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	subjects := make([]string, 0, len(bySubject))
	for s := range bySubject {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)

	var questions []model.Question
	for _, subject := range subjects {
		for i, qi := range bySubject[subject] {
			localID, err := rawID(qi.ID)
			if err != nil {
				return nil, fmt.Errorf("%s question %d: %w", subject, i, err)
			}
			options, err := RenderOptions(qi.Options)
			if err != nil {
				return nil, fmt.Errorf("%s question %s: %w", subject, localID, err)
			}
			questions = append(questions, model.Question{
				UniqueID:      UniqueID(subject, localID),
				Subject:       subject,
				Text:          qi.Question,
				Options:       options,
				CorrectAnswer: qi.CorrectAnswer,
			})
		}
	}
	return questions, nil
}

// rawID accepts a JSON string or number.
func rawID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return "", fmt.Errorf("missing id")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("bad id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("bad id %s", raw)
	}
	return n.String(), nil
}

// RenderOptions turns an options value into display strings. An object keyed
// by letter becomes "<letter>) <text>" sorted by letter; an array passes through.
func RenderOptions(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}
	switch raw[0] {
	case '{':
		var keyed map[string]string
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, fmt.Errorf("bad options: %w", err)
		}
		return renderKeyed(keyed), nil
	case '[':
		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("bad options: %w", err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("bad options: expected object or array")
	}
}

func renderKeyed(keyed map[string]string) []string {
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+") "+keyed[k])
	}
	return out
}

package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pavelanni/quizzer/internal/model"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type initDBResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Questions int    `json:"questions"`
	Database  bool   `json:"database"`
}

type quizQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Section  string   `json:"section"`
}

func newQuizQuestion(q model.Question) quizQuestion {
	opts := q.Options
	if opts == nil {
		opts = []string{}
	}
	return quizQuestion{ID: q.UniqueID, Question: q.Text, Options: opts, Section: q.Subject}
}

type quizResponse struct {
	Questions []quizQuestion `json:"questions"`
	Subject   string         `json:"subject,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// loginRequest accepts string or numeric name and roll_no values.
type loginRequest struct {
	Name   string
	RollNo string
}

func (l *loginRequest) UnmarshalJSON(data []byte) error {
	var fields model.Answers
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	l.Name, l.RollNo = fields["name"], fields["roll_no"]
	return nil
}

// submitRequest keeps whatever fields decode; a malformed answers value
// leaves Answers empty.
type submitRequest struct {
	StudentID string
	Subject   string
	Answers   model.Answers
}

func (s *submitRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var fields model.Answers
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	s.StudentID, s.Subject = fields["student_id"], fields["subject"]
	if a, ok := raw["answers"]; ok {
		var answers model.Answers
		if err := json.Unmarshal(a, &answers); err == nil {
			s.Answers = answers
		}
	}
	return nil
}

// decodeJSON reads a JSON body of at most maxBodyBytes. An empty, oversized
// or malformed body yields the zero value.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) T {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if !errors.Is(err, io.EOF) {
			slog.Debug("ignoring malformed request body", "path", r.URL.Path, "error", err)
		}
		var zero T
		return zero
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

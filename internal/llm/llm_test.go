package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pavelanni/quizzer/internal/model"
)

// fakeCompletions serves /chat/completions with a fixed status and body.
func fakeCompletions(t *testing.T, status int, body string, gotReq *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if gotReq != nil {
			if err := json.NewDecoder(r.Body).Decode(gotReq); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	var req map[string]any
	srv := fakeCompletions(t, http.StatusOK,
		`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Dear Asha, great work."}}]}`,
		&req)

	c := New(srv.URL, "test-key", "")
	got, err := c.Generate(context.Background(), "write a report")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Dear Asha, great work." {
		t.Errorf("Generate = %q", got)
	}
	if req["model"] != DefaultModel {
		t.Errorf("model = %v, want %s", req["model"], DefaultModel)
	}
	msgs, _ := req["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected a single message, got %v", req["messages"])
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "user" || first["content"] != "write a report" {
		t.Errorf("unexpected message: %v", first)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"no choices", http.StatusOK, `{"choices":[]}`, model.ErrMalformedResponse},
		{"empty content", http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`, model.ErrMalformedResponse},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`, nil},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"invalid key"}}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeCompletions(t, tt.status, tt.body, nil)
			_, err := New(srv.URL, "k", "m").Generate(context.Background(), "p")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error %v should wrap %v", err, tt.wantErr)
				}
				return
			}
			var te *model.TransportError
			if !errors.As(err, &te) {
				t.Errorf("expected TransportError, got %T: %v", err, err)
			}
		})
	}
}

func TestGenerateHonorsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := New(srv.URL, "k", "m").Generate(ctx, "p")
	if err == nil {
		t.Fatal("expected deadline error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Generate took %v after deadline", elapsed)
	}
}

func TestNewDefaults(t *testing.T) {
	if got := New("", "k", "").Model(); got != DefaultModel {
		t.Errorf("Model() = %q, want %q", got, DefaultModel)
	}
	if got := New(GroqBaseURL, "k", "llama-3.3-70b-versatile").Model(); got != "llama-3.3-70b-versatile" {
		t.Errorf("Model() = %q", got)
	}
	if got := NewGemini("k", " ").Model(); got != DefaultGeminiModel {
		t.Errorf("Gemini Model() = %q, want %q", got, DefaultGeminiModel)
	}
}

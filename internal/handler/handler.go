package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizzer/internal/bank"
	"github.com/pavelanni/quizzer/internal/identity"
	"github.com/pavelanni/quizzer/internal/model"
	"github.com/pavelanni/quizzer/internal/submission"
)

// Migrator creates the database tables.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	bank        *bank.Bank
	identity    *identity.Resolver
	submissions *submission.Service
	migrator    Migrator
	config      model.QuizConfig
}

// New creates a new Handler. migrator is nil when no database is configured.
func New(b *bank.Bank, res *identity.Resolver, svc *submission.Service, migrator Migrator, cfg model.QuizConfig) *Handler {
	if b == nil {
		b = bank.Empty()
	}
	return &Handler{bank: b, identity: res, submissions: svc, migrator: migrator, config: cfg}
}

// Routes registers all HTTP routes. The quiz endpoints are served both at
// the root and under /api.
func (h *Handler) Routes(r chi.Router) {
	r.Use(CORS)

	h.quizRoutes(r)
	r.Route("/api", h.quizRoutes)

	r.Post("/auth/login", h.handleLogin)
	r.Get("/quiz/unified", h.handleQuiz)
	r.Get("/healthz", h.handleHealth)
}

func (h *Handler) quizRoutes(r chi.Router) {
	r.Get("/init-db", h.handleInitDB)
	r.Post("/login", h.handleLogin)
	r.Get("/quiz", h.handleQuiz)
	r.Post("/submit", h.handleSubmit)
}

func (h *Handler) handleInitDB(w http.ResponseWriter, r *http.Request) {
	if h.migrator == nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "DATABASE_URL not set"})
		return
	}
	if err := h.migrator.Migrate(r.Context()); err != nil {
		slog.Error("database initialization failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, initDBResponse{Success: true, Message: "Database tables initialized"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req := decodeJSON[loginRequest](w, r)
	id := h.identity.Resolve(r.Context(), req.Name, req.RollNo)
	slog.Info("student login", "status", id.Status, "student_id", id.StudentID)
	writeJSON(w, http.StatusOK, id)
}

func (h *Handler) handleQuiz(w http.ResponseWriter, r *http.Request) {
	if h.bank.Len() == 0 {
		writeJSON(w, http.StatusOK, quizResponse{Questions: []quizQuestion{}, Error: "No questions loaded"})
		return
	}

	questions := []quizQuestion{}
	for _, subject := range h.config.Subjects {
		for _, q := range h.bank.Sample(subject, h.config.PerSubject) {
			questions = append(questions, newQuizQuestion(q))
		}
	}
	writeJSON(w, http.StatusOK, quizResponse{Questions: questions, Subject: h.config.TestLabel})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req := decodeJSON[submitRequest](w, r)
	res := h.submissions.Submit(r.Context(), model.Submission{
		StudentID: req.StudentID,
		Subject:   req.Subject,
		Answers:   req.Answers,
	})
	slog.Info("submission graded",
		"student_id", req.StudentID,
		"score", res.Score,
		"total", res.Total,
		"groq_error", res.Debug.GroqError != nil,
		"db_error", res.Debug.DBError != nil,
	)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Questions: h.bank.Len(),
		Database:  h.migrator != nil,
	})
}

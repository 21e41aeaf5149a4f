package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "censusqc/internal/errors"
)

// ValidationHandler handles validation runs and their results.
type ValidationHandler struct {
	logger *slog.Logger
}

// NewValidationHandler creates a validation handler.
func NewValidationHandler(logger *slog.Logger) *ValidationHandler {
	return &ValidationHandler{
		logger: logger.With(slog.String("component", "validation_handler")),
	}
}

// Routes mounts the validation routes under a table.
func (h *ValidationHandler) Routes(r chi.Router) {
	r.Post("/validate", h.Validate)
	r.Get("/issues", h.GetIssues)
	r.Get("/score", h.GetScore)
}

// Validate handles POST /api/tables/{tableID}/validate. Each run
// replaces the previous run's issues and score.
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	reqID := middleware.GetReqID(r.Context())

	issues, score, err := session.Validate(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "validation run failed",
			slog.String("request_id", reqID),
			slog.String("table_id", session.ID()),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewWithDetails(http.StatusInternalServerError, "VALIDATION_RUN_FAILED", "Validation run failed", err.Error())))
		return
	}

	h.logger.InfoContext(r.Context(), "validation run complete",
		slog.String("request_id", reqID),
		slog.String("table_id", session.ID()),
		slog.Int("issues", len(issues)),
		slog.Float64("score", score.Overall))

	renderOK(w, r, map[string]interface{}{
		"issues": issues,
		"score":  score,
	})
}

// GetIssues handles GET /api/tables/{tableID}/issues. Optional query
// filters: category, severity, resolved=true|false.
func (h *ValidationHandler) GetIssues(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	issues := session.Issues()

	category := r.URL.Query().Get("category")
	severity := r.URL.Query().Get("severity")
	resolved := r.URL.Query().Get("resolved")

	filtered := issues[:0:0]
	for _, issue := range issues {
		if category != "" && string(issue.Category) != category {
			continue
		}
		if severity != "" && string(issue.Severity) != severity {
			continue
		}
		if resolved == "true" && !issue.Resolved() {
			continue
		}
		if resolved == "false" && issue.Resolved() {
			continue
		}
		filtered = append(filtered, issue)
	}
	renderOK(w, r, map[string]interface{}{
		"total":  len(filtered),
		"issues": filtered,
	})
}

// GetScore handles GET /api/tables/{tableID}/score.
func (h *ValidationHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	score := session.Score()
	if score == nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.New(http.StatusNotFound, "SCORE_NOT_COMPUTED", "Run validation before requesting a score")))
		return
	}
	renderOK(w, r, score)
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"censusqc/internal/detectors"
	apierrors "censusqc/internal/errors"
	"censusqc/internal/fixes"
)

// FixHandler handles remediation requests against detected issues.
type FixHandler struct {
	logger *slog.Logger
}

// NewFixHandler creates a fix handler.
func NewFixHandler(logger *slog.Logger) *FixHandler {
	return &FixHandler{
		logger: logger.With(slog.String("component", "fix_handler")),
	}
}

// Routes mounts the fix routes under a table.
func (h *FixHandler) Routes(r chi.Router) {
	r.Route("/issues/{issueID}", func(r chi.Router) {
		r.Post("/fix", h.ApplyFix)
		r.Post("/validate-fix", h.ValidateFix)
		r.Post("/undo", h.Undo)
		r.Get("/preview", h.Preview)
		r.Get("/suggestions", h.GetSuggestions)
		r.Get("/history", h.GetHistory)
	})
	r.Post("/bulk-fix", h.BulkFix)
	r.Post("/category-fix", h.CategoryFix)
}

// ApplyFix handles POST .../issues/{issueID}/fix.
func (h *FixHandler) ApplyFix(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	issueID := chi.URLParam(r, "issueID")
	reqID := middleware.GetReqID(r.Context())

	req := &FixRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	result, err := session.ApplyFix(issueID, fixes.Action(req.Action), req.Data.toFixData(), req.PerformedBy)
	if err != nil {
		h.logger.WarnContext(r.Context(), "fix failed",
			slog.String("request_id", reqID),
			slog.String("issue_id", issueID),
			slog.String("action", req.Action),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromEngine(err)))
		return
	}

	h.logger.InfoContext(r.Context(), "fix applied",
		slog.String("request_id", reqID),
		slog.String("issue_id", issueID),
		slog.String("action", req.Action),
		slog.Int("rows_affected", result.RowsAffected))
	renderOK(w, r, result)
}

// ValidateFix handles POST .../issues/{issueID}/validate-fix. Nothing
// is mutated; the response reports errors and warnings in the supplied
// data.
func (h *FixHandler) ValidateFix(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	issueID := chi.URLParam(r, "issueID")

	req := &ValidateFixRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	result, err := session.ValidateFixData(issueID, req.Data.toFixData())
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromEngine(err)))
		return
	}
	renderOK(w, r, result)
}

// Preview handles GET .../issues/{issueID}/preview. The changes are
// computed on a table copy and discarded.
func (h *FixHandler) Preview(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	issueID := chi.URLParam(r, "issueID")

	result, err := session.PreviewFix(issueID)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromEngine(err)))
		return
	}
	renderOK(w, r, result)
}

// GetSuggestions handles GET .../issues/{issueID}/suggestions.
func (h *FixHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	issueID := chi.URLParam(r, "issueID")

	suggestions, err := session.Suggestions(issueID)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromEngine(err)))
		return
	}
	renderOK(w, r, suggestions)
}

// GetHistory handles GET .../issues/{issueID}/history.
func (h *FixHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	issueID := chi.URLParam(r, "issueID")

	if _, ok := session.Issue(issueID); !ok {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewWithDetails(http.StatusNotFound, "ISSUE_NOT_FOUND", "Issue not found", issueID)))
		return
	}
	renderOK(w, r, session.History(issueID))
}

// Undo handles POST .../issues/{issueID}/undo.
func (h *FixHandler) Undo(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	issueID := chi.URLParam(r, "issueID")
	reqID := middleware.GetReqID(r.Context())

	result, err := session.Undo(issueID)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.FromEngine(err)))
		return
	}

	h.logger.InfoContext(r.Context(), "fix undone",
		slog.String("request_id", reqID),
		slog.String("issue_id", issueID),
		slog.Bool("data_restored", result.DataRestored))
	renderOK(w, r, result)
}

// BulkFix handles POST .../bulk-fix: auto-fix every auto-fixable
// unresolved issue with per-issue isolation.
func (h *FixHandler) BulkFix(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	reqID := middleware.GetReqID(r.Context())

	req := &BulkFixRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	result, err := session.ApplyAllAutoFixes(r.Context(), req.PerformedBy)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewWithDetails(http.StatusInternalServerError, "BULK_FIX_FAILED", "Bulk fix failed", err.Error())))
		return
	}

	h.logger.InfoContext(r.Context(), "bulk fix complete",
		slog.String("request_id", reqID),
		slog.Int("applied", result.Applied),
		slog.Int("attempted", result.Attempted))
	renderOK(w, r, result)
}

// CategoryFix handles POST .../category-fix: auto-fix every unresolved
// issue of one category.
func (h *FixHandler) CategoryFix(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	reqID := middleware.GetReqID(r.Context())

	req := &CategoryFixRequest{}
	if err := render.Bind(r, req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	result, err := session.ApplyCategoryFixes(r.Context(), detectors.Category(req.Category), req.PerformedBy)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewWithDetails(http.StatusInternalServerError, "CATEGORY_FIX_FAILED", "Category fix failed", err.Error())))
		return
	}

	h.logger.InfoContext(r.Context(), "category fix complete",
		slog.String("request_id", reqID),
		slog.String("category", req.Category),
		slog.Int("applied", result.Applied),
		slog.Int("attempted", result.Attempted))
	renderOK(w, r, result)
}

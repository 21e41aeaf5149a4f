// Package http exposes the census data quality API over REST. Handlers
// follow resource-oriented routing with per-table sessions loaded into
// the request context.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"censusqc/internal/census"
	apierrors "censusqc/internal/errors"
	"censusqc/internal/services"
)

type contextKey string

const sessionKey contextKey = "session"

// TableHandler handles table lifecycle requests: upload, inspection,
// export and deletion.
type TableHandler struct {
	manager        *services.Manager
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewTableHandler creates a table handler.
func NewTableHandler(manager *services.Manager, logger *slog.Logger, maxUploadBytes int64) *TableHandler {
	return &TableHandler{
		manager:        manager,
		logger:         logger.With(slog.String("component", "table_handler")),
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes returns the table routes.
func (h *TableHandler) Routes(mount func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Get("/", h.List)

	r.Route("/{tableID}", func(r chi.Router) {
		r.Use(h.SessionCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/export", h.Export)
		mount(r)
	})
	return r
}

// SessionCtx resolves the table ID to its session and stores it in the
// request context.
func (h *TableHandler) SessionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "tableID")
		session, err := h.manager.Get(id)
		if err != nil {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.NewWithDetails(http.StatusNotFound, "TABLE_NOT_FOUND", "Census table not found", id)))
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionFrom returns the session placed by SessionCtx.
func sessionFrom(r *http.Request) *services.Session {
	return r.Context().Value(sessionKey).(*services.Session)
}

// Upload handles POST /api/tables. The multipart field "file" carries a
// CSV or XLSX census file; the extension selects the parser.
func (h *TableHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("file", "Multipart field 'file' is required")))
		return
	}
	defer file.Close()

	var table *census.Table
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		table, err = census.LoadCSV(file)
	case ".xlsx":
		table, err = census.LoadXLSXReader(file)
	default:
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("file", "Unsupported file type, expected .csv or .xlsx")))
		return
	}
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewWithDetails(http.StatusBadRequest, "PARSE_FAILED", "Failed to parse census file", err.Error())))
		return
	}

	session := h.manager.Create(table)
	h.logger.InfoContext(r.Context(), "table uploaded",
		slog.String("request_id", reqID),
		slog.String("table_id", session.ID()),
		slog.String("filename", header.Filename),
		slog.Int("rows", table.RowCount()))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, successResponse{Success: true, Data: tableSummary(session)})
}

// List handles GET /api/tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	ids := h.manager.IDs()
	summaries := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		session, err := h.manager.Get(id)
		if err != nil {
			continue
		}
		summaries = append(summaries, tableSummary(session))
	}
	renderOK(w, r, summaries)
}

// Get handles GET /api/tables/{tableID}.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	renderOK(w, r, tableSummary(sessionFrom(r)))
}

// Delete handles DELETE /api/tables/{tableID}.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if err := h.manager.Delete(session.ID()); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.NotFoundError("table")))
		return
	}
	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

// Export handles GET /api/tables/{tableID}/export?format=csv|xlsx. The
// format is validated before any serialization work.
func (h *TableHandler) Export(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	data, f, err := session.Export(format)
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.NewWithDetails(http.StatusBadRequest, "INVALID_PARAMETER", "Invalid export format", err.Error())))
		return
	}

	filename := fmt.Sprintf("census_%s.%s", session.ID(), f)
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func tableSummary(session *services.Session) map[string]interface{} {
	summary := map[string]interface{}{
		"table_id": session.ID(),
		"rows":     session.RowCount(),
		"columns":  session.ColumnCount(),
		"issues":   len(session.Issues()),
	}
	if score := session.Score(); score != nil {
		summary["score"] = score
	}
	return summary
}

package http

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"censusqc/internal/fixes"
)

// validate is the shared request validator.
var validate = validator.New()

// FixDataPayload carries caller-supplied replacement values. Cells maps
// row index to column to value; Fill applies one value to every null
// cell of a column.
type FixDataPayload struct {
	Cells     map[int]map[string]string `json:"cells,omitempty"`
	Fill      map[string]string         `json:"fill,omitempty"`
	Rationale string                    `json:"rationale,omitempty"`
}

func (p *FixDataPayload) toFixData() *fixes.FixData {
	if p == nil {
		return nil
	}
	return &fixes.FixData{
		Cells:     p.Cells,
		Fill:      p.Fill,
		Rationale: p.Rationale,
	}
}

// FixRequest is the body of POST /issues/{issueID}/fix.
type FixRequest struct {
	Action      string          `json:"action" validate:"required,oneof=auto_fix manual_entry exclude accept generate_test"`
	PerformedBy string          `json:"performed_by,omitempty"`
	Data        *FixDataPayload `json:"data,omitempty"`
}

// Bind implements render.Binder.
func (req *FixRequest) Bind(r *http.Request) error {
	return validate.Struct(req)
}

// ValidateFixRequest is the body of POST /issues/{issueID}/validate-fix.
type ValidateFixRequest struct {
	Data *FixDataPayload `json:"data" validate:"required"`
}

// Bind implements render.Binder.
func (req *ValidateFixRequest) Bind(r *http.Request) error {
	return validate.Struct(req)
}

// BulkFixRequest is the body of POST /bulk-fix.
type BulkFixRequest struct {
	PerformedBy string `json:"performed_by,omitempty"`
}

// Bind implements render.Binder.
func (req *BulkFixRequest) Bind(r *http.Request) error {
	return validate.Struct(req)
}

// CategoryFixRequest is the body of POST /category-fix.
type CategoryFixRequest struct {
	Category    string `json:"category" validate:"required,oneof=missing_data format_error logic_error compliance_error anomaly"`
	PerformedBy string `json:"performed_by,omitempty"`
}

// Bind implements render.Binder.
func (req *CategoryFixRequest) Bind(r *http.Request) error {
	return validate.Struct(req)
}

// successResponse is the envelope for mutation responses.
type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func renderOK(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, successResponse{Success: true, Data: data})
}

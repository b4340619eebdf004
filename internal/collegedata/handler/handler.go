package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"collegedesk/internal/collegedata/models"
	dErrors "collegedesk/pkg/domain-errors"
	"collegedesk/pkg/platform/httputil"
	"collegedesk/pkg/requestcontext"
)

// Service defines the interface for college-data operations.
type Service interface {
	Fetch(ctx context.Context, phone string) (*models.Record, error)
	Save(ctx context.Context, phone string, order []string, notes map[string][]string, liked []string) error
}

// Handler wires the college-data endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a college-data handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the college-data endpoints on the router. AppendFact is
// deliberately not exposed over HTTP; it exists only at the service layer.
func (h *Handler) Register(r chi.Router) {
	r.Get("/college-data", h.HandleFetch)
	r.Post("/college-data", h.HandleSave)
}

// HandleFetch handles GET /college-data?phone=<p>.
//
// Store failures do not become a 500 here: the response stays 200 with the
// default empty shape plus an error field, matching the contract the UI was
// built against. 400 is reserved for a missing phone parameter.
func (h *Handler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	phone := strings.TrimSpace(r.URL.Query().Get("phone"))
	if phone == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "Phone number is required"))
		return
	}

	record, err := h.service.Fetch(ctx, phone)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "fetch college data failed",
			"request_id", requestID,
			"phone", phone,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusOK, EmptyWithError(httputil.Message(err)))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromRecord(record))
}

// HandleSave handles POST /college-data.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SaveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	err := h.service.Save(ctx, req.Phone, req.ParsedOrder(), req.ParsedNotes(), req.ParsedLiked())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "save college data failed",
			"request_id", requestID,
			"phone", req.Phone,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "college data saved",
		"request_id", requestID,
		"phone", req.Phone,
		"colleges", len(req.ParsedOrder()),
	)
	httputil.WriteJSON(w, http.StatusOK, SaveResponse{Message: "Data saved successfully"})
}

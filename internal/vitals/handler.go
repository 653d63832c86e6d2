package vitals

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/ems-vitals-platform/internal/archive"
	"github.com/wolfman30/ems-vitals-platform/internal/compliance"
	"github.com/wolfman30/ems-vitals-platform/internal/identity"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Handler exposes the vitals service over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new vitals handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("vitals: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// AnalyzeHealthMetrics handles POST /health-metrics-analysis. Any failure other than
// invalid input answers 500 with FallbackAdvice.
func (h *Handler) AnalyzeHealthMetrics(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("health metrics analysis panicked", "panic", rec)
			writeError(w, http.StatusInternalServerError, FallbackAdvice)
		}
	}()

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	assessment, err := h.service.Analyze(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err, FallbackAdvice)
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

// ScoreRisk handles POST /v1/vitals/risk
func (h *Handler) ScoreRisk(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	score, err := h.service.Risk(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, err, "failed to score risk")
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// RecordReading handles POST /v1/vitals
func (h *Handler) RecordReading(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Record(r.Context(), userID, in)
	if err != nil {
		h.logger.Error("failed to record reading", "error", err, "user_id", userID)
		h.writeServiceError(w, err, "failed to record reading")
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// GetReading handles GET /v1/vitals/{readingID}
func (h *Handler) GetReading(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "readingID"))
	if err != nil {
		h.writeServiceError(w, err, "failed to load reading")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListReadingsResponse is the response for listing readings
type ListReadingsResponse struct {
	Readings []AssessedReading `json:"readings"`
	Count    int               `json:"count"`
}

// ListReadings handles GET /v1/vitals
func (h *Handler) ListReadings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	readings, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to list readings", "error", err, "user_id", userID)
		h.writeServiceError(w, err, "failed to list readings")
		return
	}
	writeJSON(w, http.StatusOK, ListReadingsResponse{Readings: readings, Count: len(readings)})
}

// AuditTrailResponse is the response for GET /v1/vitals/audit
type AuditTrailResponse struct {
	Events []compliance.AuditEvent `json:"events"`
	Count  int                     `json:"count"`
}

// GetAuditTrail handles GET /v1/vitals/audit
func (h *Handler) GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	params := r.URL.Query()
	q := AuditQuery{
		EventType: compliance.AuditEventType(params.Get("type")),
		ReadingID: params.Get("reading_id"),
	}
	if raw := params.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		q.Limit = n
	}
	events, err := h.service.AuditTrail(r.Context(), userID, q)
	if err != nil {
		if !errors.Is(err, ErrAuditDisabled) {
			h.logger.Error("failed to load audit trail", "error", err, "user_id", userID)
		}
		h.writeServiceError(w, err, "failed to load audit trail")
		return
	}
	writeJSON(w, http.StatusOK, AuditTrailResponse{Events: events, Count: len(events)})
}

// GetSummary handles GET /v1/vitals/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to summarize readings", "error", err, "user_id", userID)
		h.writeServiceError(w, err, "failed to summarize readings")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ExportHistory handles POST /v1/vitals/export
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	key, err := h.service.Export(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, archive.ErrDisabled) {
			h.logger.Error("failed to export history", "error", err, "user_id", userID)
		}
		h.writeServiceError(w, err, "failed to export history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (MetricsInput, bool) {
	var in MetricsInput
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		h.logger.Warn("failed to decode vitals request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return MetricsInput{}, false
	}
	// The body must hold exactly one JSON value.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		h.logger.Warn("trailing data after vitals request")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return MetricsInput{}, false
	}
	return in, true
}

// writeServiceError maps service errors to status codes. Unexpected errors get the
// caller's fallback message rather than internal detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidReading):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrMissingUser):
		writeError(w, http.StatusUnauthorized, "missing user context")
	case errors.Is(err, ErrReadingNotFound):
		writeError(w, http.StatusNotFound, "reading not found")
	case errors.Is(err, archive.ErrDisabled):
		writeError(w, http.StatusServiceUnavailable, "history export is not configured")
	case errors.Is(err, ErrAuditDisabled):
		writeError(w, http.StatusServiceUnavailable, "audit trail is not configured")
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
	}
	return userID, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

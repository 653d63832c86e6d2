package contacts

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wolfman30/ems-vitals-platform/internal/identity"
	"github.com/wolfman30/ems-vitals-platform/pkg/logging"
)

// Handler handles HTTP requests for emergency contacts
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new contacts handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// ListContactsResponse is the response for listing contacts
type ListContactsResponse struct {
	Contacts []*Contact `json:"contacts"`
	Count    int        `json:"count"`
}

// CreateContact handles POST /v1/contacts
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	var req CreateContactRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("failed to decode contact request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = userID

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create contact", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to create contact")
		return
	}

	h.logger.Info("emergency contact created", "id", contact.ID, "user_id", userID)
	writeJSON(w, http.StatusCreated, contact)
}

// ListContacts handles GET /v1/contacts
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing user context")
		return
	}

	contacts, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list contacts", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}

	writeJSON(w, http.StatusOK, ListContactsResponse{Contacts: contacts, Count: len(contacts)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

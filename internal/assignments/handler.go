package assignments

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campuscore/campuscore/internal/platform/db"
	"github.com/campuscore/campuscore/internal/platform/httpx"
)

// Handler manages role assignment endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.assign)
	r.Get("/{id}", h.get)
	r.Get("/users/{userID}", h.listForUser)
	r.Put("/{id}/expiry", h.updateExpiry)
	r.Delete("/{id}", h.revoke)
}

type assignRequest struct {
	UserID    int64      `json:"userId" validate:"required,gt=0"`
	RoleID    int64      `json:"roleId" validate:"required,gt=0"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type updateExpiryRequest struct {
	ExpiresAt *time.Time `json:"expiresAt"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	assignment, err := h.service.Assign(r.Context(), AssignInput{
		UserID:    req.UserID,
		RoleID:    req.RoleID,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		h.respondError(w, "assign role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, assignment)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	assignment, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get assignment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, assignment)
}

func (h *Handler) listForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	assignments, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.respondError(w, "list assignments", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": assignments})
}

func (h *Handler) updateExpiry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req updateExpiryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	assignment, err := h.service.UpdateExpiry(r.Context(), id, req.ExpiresAt)
	if err != nil {
		h.respondError(w, "update assignment expiry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, assignment)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	assignment, err := h.service.Revoke(r.Context(), id)
	if err != nil {
		h.respondError(w, "revoke assignment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, assignment)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicate):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrDuplicate, err))
	case errors.Is(err, ErrInvalid):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
	case errors.Is(err, db.ErrStaleVersion):
		httpx.RespondError(w, httpx.ErrConflict)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

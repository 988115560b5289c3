package students

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campuscore/campuscore/internal/platform/httpx"
	"github.com/campuscore/campuscore/internal/shared"
)

const maxPerPage = 100

// Handler manages student record endpoints.
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

// MountRoutes registers student routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createStudentRequest struct {
	AdmissionNo   string `json:"admissionNo" validate:"required"`
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName"`
	Email         string `json:"email" validate:"omitempty,email"`
	ClassLabel    string `json:"classLabel" validate:"required"`
	StreamLabel   string `json:"streamLabel"`
	GuardianName  string `json:"guardianName"`
	GuardianPhone string `json:"guardianPhone"`
}

type updateStudentRequest struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName"`
	Email         string `json:"email" validate:"omitempty,email"`
	ClassLabel    string `json:"classLabel" validate:"required"`
	StreamLabel   string `json:"streamLabel"`
	GuardianName  string `json:"guardianName"`
	GuardianPhone string `json:"guardianPhone"`
	Status        string `json:"status" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r, maxPerPage)
	students, pagination, err := h.service.List(r.Context(), ListInput{
		Search:     r.URL.Query().Get("search"),
		ClassLabel: r.URL.Query().Get("class"),
		Status:     r.URL.Query().Get("status"),
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		h.respondError(w, "list students", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"students": students, "pagination": pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	student, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	student, err := h.service.Create(r.Context(), CreateStudentInput{
		AdmissionNo:   req.AdmissionNo,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		ClassLabel:    req.ClassLabel,
		StreamLabel:   req.StreamLabel,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
	})
	if err != nil {
		h.respondError(w, "create student", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, student)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req updateStudentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	student, err := h.service.Update(r.Context(), id, UpdateStudentInput{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		ClassLabel:    req.ClassLabel,
		StreamLabel:   req.StreamLabel,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		Status:        req.Status,
	})
	if err != nil {
		h.respondError(w, "update student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete student", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicate):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrDuplicate, err))
	case errors.Is(err, ErrInvalid):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

package employees

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campuscore/campuscore/internal/platform/httpx"
	"github.com/campuscore/campuscore/internal/shared"
)

const maxPerPage = 100

// Handler manages employee record endpoints.
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

// MountRoutes registers employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createEmployeeRequest struct {
	StaffNo     string     `json:"staffNo" validate:"required"`
	FirstName   string     `json:"firstName" validate:"required"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email" validate:"omitempty,email"`
	Phone       string     `json:"phone"`
	Designation string     `json:"designation" validate:"required"`
	Department  string     `json:"department" validate:"required"`
	SalaryGrade string     `json:"salaryGrade"`
	HiredAt     *time.Time `json:"hiredAt,omitempty"`
}

type updateEmployeeRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Designation string `json:"designation" validate:"required"`
	Department  string `json:"department" validate:"required"`
	SalaryGrade string `json:"salaryGrade"`
	Status      string `json:"status" validate:"required"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromRequest(r, maxPerPage)
	employees, pagination, err := h.service.List(r.Context(), ListInput{
		Department: r.URL.Query().Get("department"),
		Status:     r.URL.Query().Get("status"),
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		h.respondError(w, "list employees", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"employees": employees, "pagination": pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	employee, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	input := CreateEmployeeInput{
		StaffNo:     req.StaffNo,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Designation: req.Designation,
		Department:  req.Department,
		SalaryGrade: req.SalaryGrade,
	}
	if req.HiredAt != nil {
		input.HiredAt = *req.HiredAt
	}
	employee, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create employee", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, employee)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req updateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	employee, err := h.service.Update(r.Context(), id, UpdateEmployeeInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Designation: req.Designation,
		Department:  req.Department,
		SalaryGrade: req.SalaryGrade,
		Status:      req.Status,
	})
	if err != nil {
		h.respondError(w, "update employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete employee", err)
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

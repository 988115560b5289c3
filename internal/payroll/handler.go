package payroll

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campuscore/campuscore/internal/platform/httpx"
)

// Handler manages payroll endpoints.
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

// MountRoutes registers payroll routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/structures/{employeeID}", h.getStructure)
	r.Put("/structures/{employeeID}", h.setStructure)
	r.Get("/runs", h.listRuns)
	r.Get("/runs/{id}", h.getRun)
	r.Post("/runs", h.calculateRun)
}

type componentPayload struct {
	Name   string `json:"name" validate:"required"`
	Amount int64  `json:"amount" validate:"gte=0"`
}

type setStructureRequest struct {
	Base       int64              `json:"base" validate:"required,gt=0"`
	Allowances []componentPayload `json:"allowances" validate:"dive"`
}

type calculateRunRequest struct {
	Period string `json:"period" validate:"required"`
}

func (h *Handler) getStructure(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	structure, err := h.service.GetStructure(r.Context(), employeeID)
	if err != nil {
		h.respondError(w, "get salary structure", err)
		return
	}
	httpx.JSON(w, http.StatusOK, structure)
}

func (h *Handler) setStructure(w http.ResponseWriter, r *http.Request) {
	employeeID, err := strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req setStructureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	allowances := make([]Component, len(req.Allowances))
	for i, component := range req.Allowances {
		allowances[i] = Component{Name: component.Name, Amount: component.Amount}
	}
	structure, err := h.service.SetStructure(r.Context(), SetStructureInput{
		EmployeeID: employeeID,
		Base:       req.Base,
		Allowances: allowances,
	})
	if err != nil {
		h.respondError(w, "set salary structure", err)
		return
	}
	httpx.JSON(w, http.StatusOK, structure)
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.service.ListRuns(r.Context())
	if err != nil {
		h.respondError(w, "list payroll runs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	run, err := h.service.GetRun(r.Context(), id)
	if err != nil {
		h.respondError(w, "get payroll run", err)
		return
	}
	httpx.JSON(w, http.StatusOK, run)
}

func (h *Handler) calculateRun(w http.ResponseWriter, r *http.Request) {
	var req calculateRunRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	run, err := h.service.CalculateRun(r.Context(), req.Period)
	if err != nil {
		h.respondError(w, "calculate payroll run", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, run)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicateRun):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrDuplicate, err))
	case errors.Is(err, ErrInvalid):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err))
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

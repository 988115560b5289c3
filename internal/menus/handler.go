package menus

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campuscore/campuscore/internal/platform/httpx"
)

// Handler manages menu catalog endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/breadcrumbs", h.breadcrumbs)
	r.Get("/{id}", h.get)
	r.Get("/{id}/children", h.children)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createNodeRequest struct {
	Name        string `json:"name" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
	Icon        string `json:"icon"`
	Route       string `json:"route"`
	Component   string `json:"component"`
	Type        string `json:"type" validate:"required,oneof=module menu submenu action report"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    bool   `json:"isActive"`
	IsVisible   bool   `json:"isVisible"`
	ParentID    *int64 `json:"parentId"`
}

type updateNodeRequest struct {
	DisplayName string `json:"displayName" validate:"required"`
	Icon        string `json:"icon"`
	Route       string `json:"route"`
	Component   string `json:"component"`
	SortOrder   int    `json:"sortOrder"`
	IsActive    bool   `json:"isActive"`
	IsVisible   bool   `json:"isVisible"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.service.ListAll(r.Context())
	if err != nil {
		h.respondError(w, "list menus", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"menus": nodes})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	node, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get menu", err)
		return
	}
	httpx.JSON(w, http.StatusOK, node)
}

func (h *Handler) children(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	nodes, err := h.service.ListChildren(r.Context(), id)
	if err != nil {
		h.respondError(w, "list children", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"menus": nodes})
}

func (h *Handler) breadcrumbs(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	crumbs, err := h.service.Breadcrumbs(r.Context(), path)
	if err != nil {
		h.respondError(w, "breadcrumbs", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"breadcrumbs": crumbs})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	node, err := h.service.Create(r.Context(), CreateNodeInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Icon:        req.Icon,
		Route:       req.Route,
		Component:   req.Component,
		Type:        NodeType(req.Type),
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
		IsVisible:   req.IsVisible,
		ParentID:    req.ParentID,
	})
	if err != nil {
		h.respondError(w, "create menu", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, node)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req updateNodeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	node, err := h.service.Update(r.Context(), id, UpdateNodeInput{
		DisplayName: req.DisplayName,
		Icon:        req.Icon,
		Route:       req.Route,
		Component:   req.Component,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
		IsVisible:   req.IsVisible,
	})
	if err != nil {
		h.respondError(w, "update menu", err)
		return
	}
	httpx.JSON(w, http.StatusOK, node)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete menu", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrHasChildren), errors.Is(err, ErrInvalid):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func urlID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

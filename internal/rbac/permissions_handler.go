package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campuscore/campuscore/internal/platform/httpx"
)

// PermissionsHandler exposes grant administration endpoints.
type PermissionsHandler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewPermissionsHandler builds a PermissionsHandler.
func NewPermissionsHandler(logger *slog.Logger, service *Service) *PermissionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PermissionsHandler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers grant routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/roles/{roleID}", h.listGrants)
	r.Put("/roles/{roleID}", h.assignGrants)
	r.Delete("/roles/{roleID}/menus/{menuID}", h.revokeGrant)
}

type grantPayload struct {
	MenuID      int64         `json:"menuId" validate:"required"`
	Permissions PermissionSet `json:"permissions"`
}

type assignGrantsRequest struct {
	Grants []grantPayload `json:"grants" validate:"required,min=1,dive"`
}

func (h *PermissionsHandler) listGrants(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	grants, err := h.service.ListGrants(r.Context(), roleID)
	if err != nil {
		h.logger.Error("list grants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": grants})
}

func (h *PermissionsHandler) assignGrants(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var req assignGrantsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	grants := make([]Grant, 0, len(req.Grants))
	for _, payload := range req.Grants {
		grants = append(grants, Grant{MenuID: payload.MenuID, Permissions: payload.Permissions})
	}
	if err := h.service.AssignGrants(r.Context(), roleID, grants); err != nil {
		if errors.Is(err, ErrUnknownReference) {
			httpx.RespondError(w, httpx.ErrValidation)
			return
		}
		h.logger.Error("assign grants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PermissionsHandler) revokeGrant(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	menuID, err := strconv.ParseInt(chi.URLParam(r, "menuID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.service.RevokeGrant(r.Context(), roleID, menuID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("revoke grant", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package rbac

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/campuscore/campuscore/internal/menus"
	"github.com/campuscore/campuscore/internal/platform/httpx"
	"github.com/campuscore/campuscore/internal/shared"
)

// MenuResolver looks up catalog nodes by name.
type MenuResolver interface {
	FindByName(ctx context.Context, name string) (*menus.MenuNode, error)
}

// Policy names the menu an operation belongs to and the capabilities it
// requires. Policies are attached explicitly at route registration.
type Policy struct {
	Menu         string
	Capabilities []string
}

// Middleware performs the per-request authorization check:
// resolve identity, resolve menu, resolve grant, evaluate capabilities.
// Every step fails closed; denial is a response, not an error.
type Middleware struct {
	Service *Service
	Menus   MenuResolver
	Logger  *slog.Logger
}

// Require gates a route behind a menu/capability policy. All listed
// capabilities must be granted; the first missing one denies.
func (m Middleware) Require(menu string, capabilities ...string) func(http.Handler) http.Handler {
	policy := Policy{Menu: menu, Capabilities: capabilities}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.check(w, r, policy, next)
		})
	}
}

func (m Middleware) check(w http.ResponseWriter, r *http.Request, policy Policy, next http.Handler) {
	ctx := r.Context()

	// ResolveIdentity: a missing or malformed credential never reaches a grant.
	identity := shared.IdentityFromContext(ctx)
	if identity == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	if len(policy.Capabilities) == 0 {
		next.ServeHTTP(w, r)
		return
	}

	// ResolveMenu: unknown target menu denies.
	node, err := m.Menus.FindByName(ctx, policy.Menu)
	if err != nil {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	// ResolveGrant: union of the caller's active roles' flags for this menu.
	effective, err := m.Service.EffectiveSet(ctx, identity.UserID, node.ID)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("resolve permissions", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	// EvaluateCapabilities: every required capability must hold; unrecognised
	// names evaluate false.
	for _, capability := range policy.Capabilities {
		if !effective.Has(capability) {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
	}

	next.ServeHTTP(w, r)
}

// RequireForMethod gates a route group behind one menu, deriving the
// capability from the request: reads need view, creates add, updates edit,
// deletes delete. Export downloads (.csv/.pdf paths) need export on top of
// view.
func (m Middleware) RequireForMethod(menu string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.check(w, r, Policy{Menu: menu, Capabilities: capabilitiesFor(r)}, next)
		})
	}
}

func capabilitiesFor(r *http.Request) []string {
	if strings.HasSuffix(r.URL.Path, ".csv") || strings.HasSuffix(r.URL.Path, ".pdf") {
		return []string{CapView, CapExport}
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return []string{CapView}
	case http.MethodPost:
		return []string{CapAdd}
	case http.MethodPut, http.MethodPatch:
		return []string{CapEdit}
	case http.MethodDelete:
		return []string{CapDelete}
	default:
		return []string{CapView}
	}
}

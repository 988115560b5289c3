package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campuscore/campuscore/internal/menus"
	"github.com/campuscore/campuscore/internal/shared"
)

type staticMenus map[string]int64

func (s staticMenus) FindByName(ctx context.Context, name string) (*menus.MenuNode, error) {
	for stored, id := range s {
		if strings.EqualFold(stored, name) {
			return &menus.MenuNode{ID: id, Name: stored}, nil
		}
	}
	return nil, menus.ErrNotFound
}

func newCheck(t *testing.T, roles staticRoles, grants *mockGrants) Middleware {
	t.Helper()
	return Middleware{
		Service: NewService(grants, roles),
		Menus:   staticMenus{"AttendanceManagement": 5},
	}
}

func doRequest(t *testing.T, m Middleware, userID int64, caps ...string) int {
	t.Helper()
	handler := m.Require("AttendanceManagement", caps...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/attendance", nil)
	if userID != 0 {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), &shared.Identity{UserID: userID}))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Code
}

func TestMissingCredentialIsUnauthorized(t *testing.T) {
	m := newCheck(t, staticRoles{}, newMockGrants())
	if code := doRequest(t, m, 0, CapView); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestTeacherScenario(t *testing.T) {
	grants := newMockGrants()
	// Role "Teacher" (id 1) granted view but not add on AttendanceManagement.
	if err := grants.ReplaceGrants(context.Background(), 1, []Grant{{MenuID: 5, Permissions: PermissionSet{View: true}}}); err != nil {
		t.Fatal(err)
	}
	m := newCheck(t, staticRoles{7: {1}}, grants)

	if code := doRequest(t, m, 7, "view"); code != http.StatusOK {
		t.Fatalf("view should be allowed, got %d", code)
	}
	if code := doRequest(t, m, 7, "view", "add"); code != http.StatusForbidden {
		t.Fatalf("view+add should be denied, got %d", code)
	}
}

func TestTwoRoleUnionAllows(t *testing.T) {
	grants := newMockGrants()
	ctx := context.Background()
	if err := grants.ReplaceGrants(ctx, 1, []Grant{{MenuID: 5, Permissions: PermissionSet{View: true}}}); err != nil {
		t.Fatal(err)
	}
	if err := grants.ReplaceGrants(ctx, 2, []Grant{{MenuID: 5, Permissions: PermissionSet{Add: true}}}); err != nil {
		t.Fatal(err)
	}
	m := newCheck(t, staticRoles{7: {1, 2}}, grants)

	if code := doRequest(t, m, 7, "view", "add"); code != http.StatusOK {
		t.Fatalf("union of roles should allow view+add, got %d", code)
	}
}

func TestUnknownMenuDenies(t *testing.T) {
	m := newCheck(t, staticRoles{7: {1}}, newMockGrants())
	handler := m.Require("NoSuchMenu", CapView)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), &shared.Identity{UserID: 7}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}

func TestUnknownCapabilityDeniesRequest(t *testing.T) {
	grants := newMockGrants()
	if err := grants.ReplaceGrants(context.Background(), 1, []Grant{{MenuID: 5, Permissions: FullAccess}}); err != nil {
		t.Fatal(err)
	}
	m := newCheck(t, staticRoles{7: {1}}, grants)

	if code := doRequest(t, m, 7, "view", "administer"); code != http.StatusForbidden {
		t.Fatalf("unknown capability should deny, got %d", code)
	}
}

func TestNoRequiredCapabilitiesOnlyNeedsIdentity(t *testing.T) {
	m := newCheck(t, staticRoles{}, newMockGrants())
	if code := doRequest(t, m, 7); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
}

// Expired assignments are excluded at the RoleSource; a role source honouring
// expiry yields no roles and therefore no capabilities.
func TestExpiredAssignmentYieldsDeny(t *testing.T) {
	grants := newMockGrants()
	if err := grants.ReplaceGrants(context.Background(), 1, []Grant{{MenuID: 5, Permissions: FullAccess}}); err != nil {
		t.Fatal(err)
	}
	expired := expiredRoles{}
	m := Middleware{Service: NewService(grants, expired), Menus: staticMenus{"AttendanceManagement": 5}}

	if code := doRequest(t, m, 7, CapView); code != http.StatusForbidden {
		t.Fatalf("expected 403 for expired assignment, got %d", code)
	}
}

type expiredRoles struct{}

func (expiredRoles) ActiveRoleIDs(ctx context.Context, userID int64, now time.Time) ([]int64, error) {
	return nil, nil
}

func doMethodRequest(t *testing.T, m Middleware, userID int64, method, path string) int {
	t.Helper()
	handler := m.RequireForMethod("AttendanceManagement")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(method, path, nil)
	if userID != 0 {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), &shared.Identity{UserID: userID}))
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr.Code
}

func TestRequireForMethod(t *testing.T) {
	grants := newMockGrants()
	if err := grants.ReplaceGrants(context.Background(), 1, []Grant{{MenuID: 5, Permissions: PermissionSet{View: true, Add: true}}}); err != nil {
		t.Fatal(err)
	}
	m := newCheck(t, staticRoles{7: {1}}, grants)

	if code := doMethodRequest(t, m, 7, http.MethodGet, "/attendance"); code != http.StatusOK {
		t.Fatalf("GET should map to view, got %d", code)
	}
	if code := doMethodRequest(t, m, 7, http.MethodPost, "/attendance/mark"); code != http.StatusOK {
		t.Fatalf("POST should map to add, got %d", code)
	}
	if code := doMethodRequest(t, m, 7, http.MethodDelete, "/attendance/3"); code != http.StatusForbidden {
		t.Fatalf("DELETE without delete capability should deny, got %d", code)
	}
	// Export downloads need the export capability on top of view.
	if code := doMethodRequest(t, m, 7, http.MethodGet, "/attendance/export.csv"); code != http.StatusForbidden {
		t.Fatalf("export without export capability should deny, got %d", code)
	}
}

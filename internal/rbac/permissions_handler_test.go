package rbac

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenReferenceGrants struct {
	*mockGrants
}

func (b *brokenReferenceGrants) ReplaceGrants(ctx context.Context, roleID int64, grants []Grant) error {
	return ErrUnknownReference
}

func TestAssignGrantsForMissingMenuIsBadRequest(t *testing.T) {
	service := NewService(&brokenReferenceGrants{newMockGrants()}, staticRoles{})
	handler := NewPermissionsHandler(nil, service)

	router := chi.NewRouter()
	handler.MountRoutes(router)

	body := strings.NewReader(`{"grants":[{"menuId":9999,"permissions":{"view":true}}]}`)
	req := httptest.NewRequest(http.MethodPut, "/roles/1", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestForeignKeyViolationMapsToUnknownReference(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	require.ErrorIs(t, mapConstraintError(fk), ErrUnknownReference)

	other := &pgconn.PgError{Code: "23505"}
	assert.NotErrorIs(t, mapConstraintError(other), ErrUnknownReference)

	plain := fmt.Errorf("exec failed")
	assert.Equal(t, plain, mapConstraintError(plain))
}

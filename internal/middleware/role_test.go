package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runRole(t *testing.T, role interface{}, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	if err := RequireRole(allowed...)(next)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	return rec
}

func TestRequireRoleAllows(t *testing.T) {
	rec := runRole(t, "ADMIN", "ADMIN", "MASTER")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireRoleForbidsOther(t *testing.T) {
	rec := runRole(t, "GATEKEEPER", "ADMIN", "MASTER")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRoleForbidsMissing(t *testing.T) {
	rec := runRole(t, nil, "ADMIN")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

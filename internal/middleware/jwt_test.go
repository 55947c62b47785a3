package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	next := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	if err := JWTAuth(testSecret)(next)(c); err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	return rec, c
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "ADMIN", 5)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	rec, c := runJWT(t, "Bearer "+tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	if role, _ := c.Get("role").(string); role != "ADMIN" {
		t.Errorf("role = %v, want ADMIN", c.Get("role"))
	}
	if sub, _ := c.Get("user_id").(float64); uint64(sub) != 42 {
		t.Errorf("user_id = %v, want 42", c.Get("user_id"))
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("another-secret", 42, "ADMIN", 5)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	rec, _ := runJWT(t, "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "ADMIN", -1)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	rec, _ := runJWT(t, "Bearer "+tok.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "token expired") {
		t.Errorf("expired tokens get a distinct message, got: %s", rec.Body.String())
	}
}

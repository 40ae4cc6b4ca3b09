package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"coffeeshop/internal/config"
	"coffeeshop/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	ExternalID  string `json:"external_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// =====================
// helper
// =====================

func mustMakeToken(t *testing.T, secret string, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()

	token := jwt.NewWithClaims(method, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func sessionClaims(sub string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":     sub,
		"email":   "taro@example.com",
		"name":    "Taro Yamada",
		"picture": "https://img.example.com/taro.png",
		"role":    "user",
		"iat":     1,
		"exp":     9999999999,
	}
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func decodeMWOK(t *testing.T, rec *httptest.ResponseRecorder) mwOKResponse {
	t.Helper()
	var r mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func newProtectedEcho(cfg config.Config) *echo.Echo {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, mwOKResponse{
			ExternalID:  c.Get(middleware.CtxExternalIDKey).(string),
			Email:       c.Get(middleware.CtxEmailKey).(string),
			DisplayName: c.Get(middleware.CtxDisplayNameKey).(string),
			Role:        c.Get(middleware.CtxRoleKey).(string),
		})
	}, middleware.AuthIdentity(cfg))
	return e
}

// =====================
// AuthIdentity
// =====================

// Authorizationなし => 401
func TestMiddleware_AuthIdentity_NoHeader(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newProtectedEcho(cfg)

	rec := runRequest(t, e, http.MethodGet, "/protected", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeMWError(t, rec)
	assert.Equal(t, "unauthorized", body.Error)
}

// Bearer形式でない => 401
func TestMiddleware_AuthIdentity_NotBearer(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newProtectedEcho(cfg)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 署名が違う => 401
func TestMiddleware_AuthIdentity_WrongSecret(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newProtectedEcho(cfg)

	token := mustMakeToken(t, "other-secret", sessionClaims("ext-1"), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// HS256以外 => 401
func TestMiddleware_AuthIdentity_WrongSigningMethod(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newProtectedEcho(cfg)

	token := mustMakeToken(t, "test-secret", sessionClaims("ext-1"), jwt.SigningMethodHS512)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// subなし => 401
func TestMiddleware_AuthIdentity_NoSub(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newProtectedEcho(cfg)

	claims := sessionClaims("ext-1")
	delete(claims, "sub")
	token := mustMakeToken(t, "test-secret", claims, jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// 正常系：contextにプロフィールが載る
func TestMiddleware_AuthIdentity_OK(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newProtectedEcho(cfg)

	token := mustMakeToken(t, "test-secret", sessionClaims("ext-1"), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/protected", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decodeMWOK(t, rec)
	assert.Equal(t, "ext-1", body.ExternalID)
	assert.Equal(t, "taro@example.com", body.Email)
	assert.Equal(t, "Taro Yamada", body.DisplayName)
	assert.Equal(t, "user", body.Role)
}

// =====================
// AdminOnly
// =====================

func newAdminEcho(cfg config.Config) *echo.Echo {
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	}, middleware.AuthIdentity(cfg), middleware.AdminOnly())
	return e
}

// 一般ユーザー => 403
func TestMiddleware_AdminOnly_Forbidden(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newAdminEcho(cfg)

	token := mustMakeToken(t, "test-secret", sessionClaims("ext-1"), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeMWError(t, rec)
	assert.Equal(t, "forbidden", body.Error)
}

// 管理者 => 200
func TestMiddleware_AdminOnly_OK(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	e := newAdminEcho(cfg)

	claims := sessionClaims("ext-1")
	claims["role"] = "admin"
	token := mustMakeToken(t, "test-secret", claims, jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

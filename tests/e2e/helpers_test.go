package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

type TestClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTestClient(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &TestClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (c *TestClient) doJSON(
	ctx context.Context,
	t *testing.T,
	method string,
	path string,
	bearer string,
	bodyBytes []byte,
) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if bodyBytes != nil {
		reqBody = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("http.NewRequest failed: %v", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		t.Fatalf("HTTP.Do failed: %v", err)
	}

	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	return resp, data
}

func requireStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status=%d want=%d body=%s", resp.StatusCode, want, string(body))
	}
}

func mustDecodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var v ErrorResponse
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("json.Unmarshal(ErrorResponse) failed: %v body=%s", err, string(body))
	}
	return v
}

func toStr(v int64) string {
	return strconv.FormatInt(v, 10)
}

func jwtSecret() string {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return s
	}
	return "dev_secret_change_me"
}

// 認証プロバイダが発行するセッショントークンを模して作る。
// サーバーと同じJWT_SECRETで署名する必要がある。
func mintSessionToken(t *testing.T, externalID string, role string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     externalID,
		"email":   externalID + "@example.com",
		"name":    "E2E User",
		"picture": "https://img.example.com/e2e.png",
		"role":    role,
		"iat":     now.Unix(),
		"exp":     now.Add(1 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(jwtSecret()))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

// テストごとに独立したユーザーを作る
func freshExternalID(prefix string) string {
	return prefix + "-" + time.Now().Format("20060102-150405.000000000")
}

// 同期済みユーザーのトークンを返す
func syncedUserToken(t *testing.T, c *TestClient, ctx context.Context, prefix string) string {
	t.Helper()

	token := mintSessionToken(t, freshExternalID(prefix), "user")

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/user/sync", token, nil)
	requireStatus(t, resp, http.StatusOK, body)

	return token
}

func adminToken(t *testing.T, c *TestClient, ctx context.Context) string {
	t.Helper()

	token := mintSessionToken(t, freshExternalID("e2e-admin"), "admin")

	resp, body := c.doJSON(ctx, t, http.MethodPost, "/user/sync", token, nil)
	requireStatus(t, resp, http.StatusOK, body)

	return token
}

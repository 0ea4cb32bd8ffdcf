package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"storefront/internal/config"
	"storefront/internal/http/router"
	applog "storefront/internal/log"
	"storefront/internal/repos"
)

const adminEmail = "admin@storefront.test"
const shopperEmail = "alice@storefront.test"
const seedPassword = "Passw0rd!"

// Minimal app over a fresh in-memory store, built exactly as serve does.
func newApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := config.Test()
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	app, _, err := router.New(cfg, db)
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return app, db
}

func captureLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(applog.Use(zap.New(core)))
	return logs
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func jsonReq(method, target string, body any) *http.Request {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

// csrfToken fetches a token from a safe request, as a browser would.
func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, _ := do(t, app, httptest.NewRequest("GET", "/api/v1/categories", nil))
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

func withCSRF(req *http.Request, tok string) *http.Request {
	req.Header.Set("X-Csrf-Token", tok)
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	return req
}

// login signs in and returns the session token.
func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	tok := csrfToken(t, app)
	req := withCSRF(jsonReq("POST", "/api/auth/login", map[string]string{"email": email, "password": seedPassword}), tok)
	resp, body := do(t, app, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d body %v", email, resp.StatusCode, body)
	}
	session, _ := body["token"].(string)
	if session == "" || extractCookie(resp, "session") != session {
		t.Fatalf("login did not return a session token: %v", body)
	}
	return session
}

func bearer(req *http.Request, tok string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+tok)
	return req
}

func hoodieBody(name string) map[string]any {
	return map[string]any{
		"product": map[string]any{
			"name":             name,
			"description":      "Warm fleece hoodie",
			"price":            999,
			"stock_quantity":   "12",
			"category":         "Men's Clothing",
			"subcategories":    []string{"Men's Tops"},
			"apparelDetails":   map[string]any{"brand": "Acme", "color": "Blue"},
			"selectedSizes":    []string{"M", "L"},
			"selectedFitTypes": []string{"Regular"},
		},
		"images": []map[string]any{
			{"url": "https://cdn.example/hoodie.jpg", "alt_text": "front"},
		},
	}
}

func toJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

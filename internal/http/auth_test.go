package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// Seeded passwords are stored as bcrypt hashes, never plaintext.
func TestPasswordsSeededAreHashed(t *testing.T) {
	_, db := newApp(t)
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, seedPassword) {
			t.Fatalf("hash contains plaintext password")
		}
		if !strings.HasPrefix(h, "$2") {
			t.Fatalf("unexpected hash format: %s", h)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte(seedPassword)); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

// Login success and failure paths, then throttling.
func TestLoginSuccessFailAndThrottle(t *testing.T) {
	app, _ := newApp(t)
	logs := captureLogs(t)
	tok := csrfToken(t, app)

	// missing csrf -> 403
	resp, _ := do(t, app, jsonReq("POST", "/api/auth/login", map[string]string{"email": shopperEmail, "password": seedPassword}))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without csrf token, got %d", resp.StatusCode)
	}

	// bad password -> 401
	resp, _ = do(t, app, withCSRF(jsonReq("POST", "/api/auth/login", map[string]string{"email": shopperEmail, "password": "Wrongpass1!"}), tok))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", resp.StatusCode)
	}

	// good password -> 200 with session cookie
	resp, body := do(t, app, withCSRF(jsonReq("POST", "/api/auth/login", map[string]string{"email": shopperEmail, "password": seedPassword}), tok))
	if resp.StatusCode != http.StatusOK || extractCookie(resp, "session") == "" {
		t.Fatalf("expected session on success, got %d %v", resp.StatusCode, body)
	}
	if user, _ := body["user"].(map[string]any); user["role"] != "USER" || user["password_hash"] != nil {
		t.Fatalf("unexpected user payload %v", body["user"])
	}

	if len(logs.FilterMessage("auth.login.fail").All()) != 1 || len(logs.FilterMessage("auth.login.success").All()) != 1 {
		t.Fatalf("login outcomes not logged: %+v", logs.All())
	}

	// throttle: the limiter admits 5 attempts per window, 2 used so far
	var last int
	for i := 0; i < 4; i++ {
		resp, _ = do(t, app, withCSRF(jsonReq("POST", "/api/auth/login", map[string]string{"email": shopperEmail, "password": "Wrongpass1!"}), tok))
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", last)
	}
	if len(logs.FilterMessage("rate.login.hit").All()) == 0 {
		t.Fatal("throttle hit not logged")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	app, _ := newApp(t)
	session := login(t, app, adminEmail)

	resp, _ := do(t, app, bearer(httptest.NewRequest("GET", "/admin/products/new", nil), session))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin form expected 200, got %d", resp.StatusCode)
	}

	resp, _ = do(t, app, bearer(httptest.NewRequest("POST", "/api/auth/logout", nil), session))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout expected 204, got %d", resp.StatusCode)
	}

	resp, _ = do(t, app, bearer(httptest.NewRequest("GET", "/admin/products/new", nil), session))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("revoked token expected 401, got %d", resp.StatusCode)
	}
}

package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAvailabilityRateLimited(t *testing.T) {
	app, _ := newApp(t)
	logs := captureLogs(t)

	var last int
	for i := 0; i < 16; i++ {
		resp, _ := do(t, app, httptest.NewRequest("GET", "/api/v1/availability?productId=p1", nil))
		last = resp.StatusCode
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("16th call expected 429, got %d", last)
	}
	if len(logs.FilterMessage("rate.availability.hit").All()) != 1 {
		t.Fatal("rate limit hit not logged")
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	app, _ := newApp(t)
	admin := login(t, app, adminEmail)

	big := bytes.Repeat([]byte("a"), 2<<20)
	req := bearer(httptest.NewRequest("POST", "/api/admin/create-product", bytes.NewReader(big)), admin)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	if err == nil && resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 or a transport error, got %d", resp.StatusCode)
	}
}

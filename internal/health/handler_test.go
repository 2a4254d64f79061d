package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Handler(pingFunc(func(context.Context) error { return nil }))(w, req)

	resp := w.Result()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	body := w.Body.String()
	expected := `{"status":"ok"}`
	if body != expected {
		t.Errorf("expected body %s, got %s", expected, body)
	}
}

func TestHandlerDatabaseDown(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Handler(pingFunc(func(context.Context) error { return errors.New("connection refused") }))(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}

	expected := `{"status":"unavailable"}`
	if body := w.Body.String(); body != expected {
		t.Errorf("expected body %s, got %s", expected, body)
	}
}

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthzOK(t *testing.T) {
	for name, ping := range map[string]func(context.Context) error{
		"no dependency": nil,
		"dependency up": func(context.Context) error { return nil },
	} {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Healthz(ping)(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rr.Code != http.StatusOK {
				t.Errorf("code = %d, want 200", rr.Code)
			}
			if rr.Body.String() != "ok" {
				t.Errorf("body = %q, want ok", rr.Body.String())
			}
		})
	}
}

func TestHealthzDependencyDown(t *testing.T) {
	ping := func(context.Context) error { return errors.New("connection refused") }
	rr := httptest.NewRecorder()
	Healthz(ping)(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not ok") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

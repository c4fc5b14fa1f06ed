package gcs

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestSidecarTokenSource(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	}))
	defer srv.Close()

	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	src := &sidecarTokenSource{url: srv.URL, client: srv.Client(), now: func() time.Time { return now }}

	tok, err := src.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "tok-1" || tok.TokenType != "Bearer" {
		t.Fatalf("unexpected token %+v", tok)
	}
	if !tok.Expiry.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry %v", tok.Expiry)
	}

	reuse := oauth2.ReuseTokenSource(nil, &sidecarTokenSource{url: srv.URL, client: srv.Client()})
	for i := 0; i < 3; i++ {
		if _, err := reuse.Token(); err != nil {
			t.Fatalf("reuse Token: %v", err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 sidecar calls, got %d", got)
	}
}

func TestSidecarTokenSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
	}{
		{name: "non-200", status: http.StatusServiceUnavailable, payload: `down`},
		{name: "empty token", status: http.StatusOK, payload: `{"access_token":""}`},
		{name: "bad json", status: http.StatusOK, payload: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.payload))
			}))
			defer srv.Close()

			src := &sidecarTokenSource{url: srv.URL, client: srv.Client()}
			if _, err := src.Token(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Black-And-White-Club/advent-board/app/observability"
	"github.com/Black-And-White-Club/advent-board/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestThrottle(t *testing.T) {
	now := time.Date(2023, 12, 1, 5, 0, 0, 0, time.UTC)
	h := throttle(newClientBuckets(rate.Every(10*time.Second), 2), func() time.Time { return now })(okHandler())

	do := func(method, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "10.0.0.1:1235").Code, "burst allows a second request")

	rejected := do(http.MethodPost, "10.0.0.1:1236")
	assert.Equal(t, http.StatusTooManyRequests, rejected.Code)
	assert.Equal(t, "10", rejected.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "10.0.0.2:1234").Code, "other clients have their own bucket")
	assert.Equal(t, http.StatusOK, do(http.MethodOptions, "10.0.0.1:1237").Code, "preflights are not counted")

	now = now.Add(10 * time.Second)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "10.0.0.1:1238").Code, "a token refills")
}

func TestClientBuckets_SweepDropsRefilledBuckets(t *testing.T) {
	now := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	buckets := newClientBuckets(rate.Limit(1), 5)

	for i := 0; i < sweepEvery-1; i++ {
		ok, _ := buckets.take(fmt.Sprintf("10.0.%d.%d", i/256, i%256), now)
		require.True(t, ok)
	}
	require.Equal(t, sweepEvery-1, buckets.len())

	// Everyone refilled except busy, which drains its burst right now.
	now = now.Add(time.Minute)
	for i := 0; i < 5; i++ {
		_, _ = buckets.take("busy", now)
	}
	assert.Equal(t, 1, buckets.len())
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"https://board.example"})(okHandler())

	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
	}{
		{name: "allowed origin", method: http.MethodGet, origin: "https://board.example", wantStatus: http.StatusOK, wantAllowed: "https://board.example"},
		{name: "other origin", method: http.MethodGet, origin: "https://evil.example", wantStatus: http.StatusOK},
		{name: "no origin", method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "allowed preflight", method: http.MethodOptions, origin: "https://board.example", preflight: true, wantStatus: http.StatusNoContent, wantAllowed: "https://board.example"},
		{name: "preflight from other origin passes through", method: http.MethodOptions, origin: "https://evil.example", preflight: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllowed, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_NoOriginsIsPassThrough(t *testing.T) {
	h := CORS(nil)(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://board.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = observability.RequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestNewRouter_Healthz(t *testing.T) {
	r := NewRouter(config.HTTPConfig{RateLimit: 100, RateBurst: 100}, slog.Default())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", okHandler(), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

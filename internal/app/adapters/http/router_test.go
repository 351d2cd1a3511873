package http

import (
	"context"
	"encoding/json"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"twitchbot/internal/app/ports"
	"twitchbot/pkg/logger"
)

type fakeStatus struct {
	st ports.Status
}

func (f *fakeStatus) Status() ports.Status { return f.st }

func newTestRouter(st ports.Status, token string) *Router {
	log := logger.New(logger.WithOutput(io.Discard))
	return NewRouter(log, &fakeStatus{st: st}, Options{GinMode: gin.TestMode, AuthToken: token})
}

func serve(r *Router, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name     string
		status   ports.Status
		wantCode int
	}{
		{
			name:     "connected",
			status:   ports.Status{State: "connected", Session: "abc", Channel: "room", StartedAt: time.Now().Add(-time.Minute)},
			wantCode: http.StatusOK,
		},
		{
			name:     "reconnecting",
			status:   ports.Status{State: "reconnecting", Channel: "room"},
			wantCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(tt.status, "")
			w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.wantCode, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.status.State, body["state"])
			assert.Equal(t, "room", body["channel"])
		})
	}
}

func TestMetrics_Open(t *testing.T) {
	r := newTestRouter(ports.Status{}, "")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetrics_Protected(t *testing.T) {
	r := newTestRouter(ports.Status{}, "s3cret")

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.SetBasicAuth("admin", "s3cret")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	log := logger.New(logger.WithOutput(io.Discard))
	r := NewRouter(log, &fakeStatus{st: ports.Status{State: "connected"}}, Options{Addr: addr, GinMode: gin.TestMode})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

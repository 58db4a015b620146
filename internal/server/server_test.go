// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/config"
)

type recordingNotifier struct {
	shutdown bool
}

func (n *recordingNotifier) SetShutdown(v bool) { n.shutdown = v }

func newTestServer(n ShutdownNotifier) *Server {
	return New(Config{
		ServerConfig: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		HealthHandler: n,
	})
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t,
		`{"success":false,"message":"Route not found","code":"NOT_FOUND"}`,
		rec.Body.String(),
	)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(nil)
	srv.Router().Get("/thing", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/thing", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestShutdownFlipsReadiness(t *testing.T) {
	n := &recordingNotifier{}
	srv := newTestServer(n)

	require.NoError(t, srv.Shutdown(context.Background(), 0))
	require.True(t, n.shutdown)
}

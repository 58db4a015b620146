// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/nexus/internal/core"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func readiness(t *testing.T, h *Handler) (int, Report) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var body Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	return rec.Code, body
}

func TestReadinessAllHealthy(t *testing.T) {
	h := NewHandler(
		Dependency{Name: "postgres", Checker: pinger{}},
		Dependency{Name: "mongo", Checker: pinger{}},
		Dependency{Name: "redis", Checker: pinger{}},
	)

	code, body := readiness(t, h)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, StateOK, body.Status)
	require.Len(t, body.Checks, 3)
	require.Equal(t, "mongo", body.Checks[1].Name)
}

func TestReadinessDegraded(t *testing.T) {
	h := NewHandler(
		Dependency{Name: "postgres", Checker: pinger{}},
		Dependency{Name: "mongo", Checker: pinger{err: errors.New("dial tcp mongo:27017: refused")}},
		Dependency{Name: "redis"},
	)

	code, body := readiness(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, StateDegraded, body.Status)
	require.True(t, body.Checks[0].Healthy)
	require.False(t, body.Checks[1].Healthy)
	require.Equal(t, "unreachable", body.Checks[1].Error)
	require.Equal(t, "not configured", body.Checks[2].Error)
}

func TestReadinessNotReady(t *testing.T) {
	h := NewHandler(Dependency{Name: "postgres", Checker: pinger{}})
	h.SetReady(false)

	code, body := readiness(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, StateNotReady, body.Status)
	require.Empty(t, body.Checks)
}

func TestShutdownFailsProbes(t *testing.T) {
	h := NewHandler()
	h.SetShutdown(true)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "shutting_down")

	code, body := readiness(t, h)
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.Equal(t, StateShuttingDown, body.Status)
}

func TestBanner(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler().Banner(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "Nexus API is running", resp.Data.(map[string]any)["message"])
}

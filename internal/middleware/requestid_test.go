// AngelaMos | 2026
// requestid_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := ulid.ParseStrict(got)
	require.NoError(t, err)
	require.Equal(t, got, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.Equal(t, "upstream-id", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEqual(t, strings.Repeat("x", 200), got)
}

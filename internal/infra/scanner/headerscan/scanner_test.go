package headerscan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/sentinel-aio/internal/domain/findings"
)

func TestScanHardenedTarget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Server", "nginx")
		for _, name := range securityHeaders {
			h.Set(name, "set")
		}
	}))
	defer srv.Close()

	s := New()
	got := s.Scan(context.Background(), srv.URL)

	require.Len(t, got, 1, "fully hardened target yields reachability only")
	assert.Equal(t, "Reachability: 200", got[0].Title)
	assert.Equal(t, findings.SeverityInfo, got[0].Severity)
	assert.Contains(t, got[0].Details, "server=nginx")
}

func TestScanReportsMissingHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
	}))
	defer srv.Close()

	s := New()
	got := s.Scan(context.Background(), srv.URL)

	require.Len(t, got, 2)
	assert.Equal(t, "Missing security headers", got[1].Title)
	assert.Equal(t, findings.SeverityMedium, got[1].Severity)
	assert.NotContains(t, got[1].Details, "x-frame-options")
	assert.Contains(t, got[1].Details, "content-security-policy")
}

func TestScanNon200IsStillReachability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New()
	got := s.Scan(context.Background(), srv.URL)

	require.NotEmpty(t, got)
	assert.Equal(t, "Reachability: 503", got[0].Title)
	assert.Equal(t, findings.SeverityInfo, got[0].Severity)
}

func TestScanUnreachableTargetIsLowFinding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately dead

	s := New()
	got := s.Scan(context.Background(), srv.URL)

	require.Len(t, got, 1)
	assert.Equal(t, "Scan error", got[0].Title)
	assert.Equal(t, findings.SeverityLow, got[0].Severity)
	assert.NotEmpty(t, got[0].Details)
}

func TestScanPrependsHTTPSScheme(t *testing.T) {
	s := New()
	got := s.Scan(context.Background(), "definitely-not-resolvable.invalid")

	require.Len(t, got, 1)
	assert.Equal(t, "Scan error", got[0].Title)
	assert.True(t, strings.Contains(got[0].Details, "https://definitely-not-resolvable.invalid"))
}

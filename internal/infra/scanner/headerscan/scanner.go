package headerscan

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bryanwahyu/sentinel-aio/internal/domain/findings"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/scans"
)

// Security headers the probe checks for.
var securityHeaders = []string{
	"x-content-type-options",
	"content-security-policy",
	"x-frame-options",
	"referrer-policy",
	"permissions-policy",
	"strict-transport-security",
}

// Scanner performs a low-impact probe: one GET, reachability status, and the
// presence of standard security headers. Errors never escape the boundary;
// they come back as a low-severity finding.
type Scanner struct {
	HTTP *http.Client
}

func New() *Scanner {
	return &Scanner{HTTP: &http.Client{Timeout: 10 * time.Second}}
}

func (s *Scanner) Scan(ctx context.Context, target string) []scans.Finding {
	url := strings.TrimSpace(target)
	if !strings.HasPrefix(url, "http") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return []scans.Finding{scanError(err)}
	}
	resp, err := s.HTTP.Do(req)
	if err != nil {
		return []scans.Finding{scanError(err)}
	}
	defer resp.Body.Close()

	server := resp.Header.Get("Server")
	if server == "" {
		server = "?"
	}
	out := []scans.Finding{{
		Title:    fmt.Sprintf("Reachability: %d", resp.StatusCode),
		Severity: findings.SeverityInfo,
		Details:  fmt.Sprintf("URL=%s, server=%s", url, server),
	}}

	var missing []string
	for _, h := range securityHeaders {
		if resp.Header.Get(h) == "" {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		out = append(out, scans.Finding{
			Title:    "Missing security headers",
			Severity: findings.SeverityMedium,
			Details:  strings.Join(missing, ", "),
		})
	}
	return out
}

func scanError(err error) scans.Finding {
	return scans.Finding{
		Title:    "Scan error",
		Severity: findings.SeverityLow,
		Details:  err.Error(),
	}
}

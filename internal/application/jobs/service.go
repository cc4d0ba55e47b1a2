package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/sentinel-aio/internal/application"
	domai "github.com/bryanwahyu/sentinel-aio/internal/domain/ai"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/bounty"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/findings"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/joblog"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/modules"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/rules"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/scans"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/workers"
)

// Job identifiers used in the job log.
const (
	JobShadowRules   = "shadow_rules"
	JobRulePromote   = "rule_promote"
	JobHypothesis    = "hypothesis"
	JobThreatFeed    = "threat_feed"
	JobFuzzing       = "fuzzing"
	JobPrioritizer   = "prioritizer"
	JobZeroDay       = "zero_day"
	JobBountyRefresh = "bounty_refresh"
	JobScanQueue     = "scan_queue"
	JobWorkerSweep   = "worker_sweep"
)

// Fallback candidates used when no AI backend is reachable.
var fallbackCandidates = []string{
	"header:missing_security_headers",
	"status:5xx_peek",
	"url:suspicious_subdomain",
}

// Service holds every recurring job body. All cross-job coordination goes
// through the repositories; job bodies keep no shared in-memory state and are
// safe to run concurrently with themselves.
//
// Every body upserts its module status on entry and appends at least one
// job-log entry before returning. Collaborator failures (AI, scanner) are
// downgraded to WARN/ERROR log entries with a fallback result; only
// storage-layer failures surface as a returned error.
type Service struct {
	Findings  findings.Repository
	Rules     rules.Repository
	Logs      joblog.Repository
	Platforms bounty.PlatformRepository
	Targets   bounty.TargetRepository
	Modules   modules.Repository
	Workers   workers.Repository

	AI      domai.Client // nil when provider is "none"
	Scanner scans.Scanner
	Reports scans.ReportStore // optional
	Clock   application.Clock

	AIProvider string
	// StaleAfter is the worker heartbeat staleness threshold.
	StaleAfter time.Duration
}

// RefreshShadowRules asks the AI collaborator for pattern candidates and
// stores each non-empty line as a shadow rule. AI failure substitutes the
// static fallback list; a per-candidate insert failure is logged and skipped.
func (s *Service) RefreshShadowRules(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Shadow Rules", "ok", "provider="+s.AIProvider); err != nil {
		return err
	}

	const telemetry = "Web scan telemetry: missing security headers, redirect chains, non-200 status spikes."
	candidates := fallbackCandidates
	if s.AI != nil {
		got, err := s.AI.GenerateCandidates(ctx, telemetry)
		if err != nil {
			if err := s.Logs.Append(ctx, JobShadowRules, joblog.LevelWarn, "candidate generation failed: "+err.Error()); err != nil {
				return err
			}
		} else {
			candidates = got
		}
	}

	added := 0
	for _, pattern := range candidates {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if _, err := s.Rules.AddShadow(ctx, pattern); err != nil {
			if err := s.Logs.Append(ctx, JobShadowRules, joblog.LevelWarn, "candidate dropped: "+pattern); err != nil {
				return err
			}
			continue
		}
		added++
	}
	return s.Logs.Append(ctx, JobShadowRules, joblog.LevelInfo, fmt.Sprintf("%d candidate(s) stored", added))
}

// PromoteLatestRule copies the newest shadow rule's pattern into the live
// tier. An empty shadow tier is a clean no-op, not an error.
func (s *Service) PromoteLatestRule(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Rule Promotion", "ok", "apply-latest"); err != nil {
		return err
	}
	shadowID, err := s.Rules.LatestShadowID(ctx)
	if err != nil {
		return err
	}
	if shadowID == 0 {
		return s.Logs.Append(ctx, JobRulePromote, joblog.LevelInfo, "no shadow rule to promote")
	}
	liveID, err := s.Rules.Promote(ctx, shadowID)
	if err != nil {
		return s.Logs.Append(ctx, JobRulePromote, joblog.LevelError, "promotion failed: "+err.Error())
	}
	return s.Logs.Append(ctx, JobRulePromote, joblog.LevelInfo,
		fmt.Sprintf("promoted shadow#%d -> live#%d", shadowID, liveID))
}

// HypothesisLoop is a placeholder body: status + log + one info finding.
func (s *Service) HypothesisLoop(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Hypothesis Loop", "ok", "hypothesis"); err != nil {
		return err
	}
	if err := s.Logs.Append(ctx, JobHypothesis, joblog.LevelInfo, "hypothesis iteration complete"); err != nil {
		return err
	}
	_, err := s.Findings.Add(ctx, "Hypothesis OK", findings.SeverityInfo, "no critical finding")
	return err
}

func (s *Service) ThreatFeedRefresh(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Threat Feed", "ok", "refresh"); err != nil {
		return err
	}
	return s.Logs.Append(ctx, JobThreatFeed, joblog.LevelInfo, "feed refreshed")
}

func (s *Service) FuzzIteration(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Fuzzing", "ok", "mutations"); err != nil {
		return err
	}
	return s.Logs.Append(ctx, JobFuzzing, joblog.LevelInfo, "fuzz iteration done")
}

func (s *Service) PrioritizePaths(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Prioritizer", "ok", "scoring"); err != nil {
		return err
	}
	return s.Logs.Append(ctx, JobPrioritizer, joblog.LevelInfo, "scored priority paths")
}

// ZeroDayHunt records a hunt pass tagged with a free-text mode label.
func (s *Service) ZeroDayHunt(ctx context.Context, mode string) error {
	if mode == "" {
		mode = "cautious"
	}
	if err := s.Modules.Set(ctx, "Zero-Day", "ok", "mode="+mode); err != nil {
		return err
	}
	if err := s.Logs.Append(ctx, JobZeroDay, joblog.LevelInfo, "hunt in mode="+mode); err != nil {
		return err
	}
	_, err := s.Findings.Add(ctx, "Zero-day sweep", findings.SeverityInfo, "mode="+mode)
	return err
}

// BountyRefresh enqueues one demo target per enabled platform. Enqueue is
// idempotent per (platform, target), so re-running never duplicates rows.
func (s *Service) BountyRefresh(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Bounty Refresh", "ok", "sync"); err != nil {
		return err
	}
	platforms, err := s.Platforms.List(ctx)
	if err != nil {
		return err
	}
	if len(platforms) == 0 {
		return s.Logs.Append(ctx, JobBountyRefresh, joblog.LevelInfo, "no platforms configured")
	}

	queued, present := 0, 0
	for _, p := range platforms {
		if !p.Enabled {
			continue
		}
		demo := strings.ToLower(p.Name) + "-demo.example.com"
		_, fresh, err := s.Targets.Enqueue(ctx, p.ID, demo, "demo")
		if err != nil {
			return err
		}
		if fresh {
			queued++
		} else {
			present++
		}
	}
	return s.Logs.Append(ctx, JobBountyRefresh, joblog.LevelInfo,
		fmt.Sprintf("queued %d target(s), %d already present", queued, present))
}

// scanReport is the JSON document archived per completed scan.
type scanReport struct {
	Target    string          `json:"target"`
	ScannedAt time.Time       `json:"scanned_at"`
	OK        bool            `json:"ok"`
	Findings  []scans.Finding `json:"findings"`
}

// DrainScanQueue pops exactly one queued target, scans it, stores the
// findings and transitions the target. The run is ok unless any finding is
// medium or worse; a failed AI summary is logged but never flips the outcome.
func (s *Service) DrainScanQueue(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Scan Queue", "ok", "scanning"); err != nil {
		return err
	}
	target, err := s.Targets.PopNext(ctx)
	if err != nil {
		return err
	}
	if target == nil {
		return s.Logs.Append(ctx, JobScanQueue, joblog.LevelInfo, "no targets in queue")
	}

	results := s.Scanner.Scan(ctx, target.Target)
	ok := true
	for _, f := range results {
		title := f.Title
		if title == "" {
			title = "Finding"
		}
		sev := f.Severity
		if sev == "" {
			sev = findings.SeverityInfo
		}
		if _, err := s.Findings.Add(ctx, title, sev, f.Details); err != nil {
			return err
		}
		if sev.Actionable() {
			ok = false
		}
	}

	if err := s.summarize(ctx, results); err != nil {
		return err
	}

	now := s.Clock.Now()
	s.archiveReport(ctx, target, results, ok, now)

	if err := s.Targets.MarkScanned(ctx, target.ID, ok, now); err != nil {
		return err
	}
	return s.Logs.Append(ctx, JobScanQueue, joblog.LevelInfo,
		fmt.Sprintf("scanned %s (ok=%v, findings=%d)", target.Target, ok, len(results)))
}

// summarize stores an AI summary of the scan as an extra info finding.
// Summary failure is a WARN, never an error.
func (s *Service) summarize(ctx context.Context, results []scans.Finding) error {
	var summary string
	if s.AI == nil {
		summary = fmt.Sprintf("%d finding(s). Review details in the dashboard.", len(results))
	} else {
		items := make([]domai.FindingSummary, 0, len(results))
		for _, f := range results {
			items = append(items, domai.FindingSummary{Title: f.Title, Severity: string(f.Severity)})
		}
		var err error
		summary, err = s.AI.Summarize(ctx, items)
		if err != nil {
			return s.Logs.Append(ctx, JobScanQueue, joblog.LevelWarn, "summary failed: "+err.Error())
		}
	}
	if summary == "" {
		return nil
	}
	_, err := s.Findings.Add(ctx, "Scan Summary", findings.SeverityInfo, summary)
	return err
}

// archiveReport uploads the scan report when a report store is configured.
// Upload failure is logged and otherwise ignored.
func (s *Service) archiveReport(ctx context.Context, target *bounty.Target, results []scans.Finding, ok bool, when time.Time) {
	if s.Reports == nil {
		return
	}
	data, err := json.Marshal(scanReport{
		Target:    target.Target,
		ScannedAt: when,
		OK:        ok,
		Findings:  results,
	})
	if err != nil {
		return
	}
	key := fmt.Sprintf("reports/%d-%s.json", target.ID, when.Format("20060102T150405Z"))
	if _, err := s.Reports.PutReport(ctx, key, data); err != nil {
		_ = s.Logs.Append(ctx, JobScanQueue, joblog.LevelWarn, "report upload failed: "+err.Error())
	}
}

// SweepStaleWorkers flips every worker whose heartbeat is missing or older
// than the staleness threshold to offline.
func (s *Service) SweepStaleWorkers(ctx context.Context) error {
	if err := s.Modules.Set(ctx, "Workers", "ok", "maintenance"); err != nil {
		return err
	}
	cutoff := s.Clock.Now().Add(-s.StaleAfter)
	n, err := s.Workers.SweepStale(ctx, cutoff)
	if err != nil {
		return err
	}
	return s.Logs.Append(ctx, JobWorkerSweep, joblog.LevelInfo,
		fmt.Sprintf("%d stale worker(s) marked offline", n))
}

// RegisterWorker upserts a worker by name and returns its freshly rotated
// token. This is the only place a token ever leaves the system.
func (s *Service) RegisterWorker(ctx context.Context, name string) (string, error) {
	token := uuid.NewString()
	if _, err := s.Workers.Register(ctx, name, token, s.Clock.Now()); err != nil {
		return "", err
	}
	return token, nil
}

// HeartbeatWorker validates name+token and refreshes liveness; it fails
// closed as a plain false.
func (s *Service) HeartbeatWorker(ctx context.Context, name, token string) (bool, error) {
	return s.Workers.Heartbeat(ctx, name, token, s.Clock.Now())
}

// OnlineWorkers is the read-time liveness count.
func (s *Service) OnlineWorkers(ctx context.Context) (int, error) {
	return s.Workers.CountOnline(ctx, s.Clock.Now().Add(-s.StaleAfter))
}

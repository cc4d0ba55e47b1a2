package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/bryanwahyu/sentinel-aio/internal/domain/ai"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/bounty"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/findings"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/joblog"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/scans"
	"github.com/bryanwahyu/sentinel-aio/internal/infra/db/sqlite"
)

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeAI struct {
	candidates []string
	summary    string
	err        error
}

func (f *fakeAI) GenerateCandidates(ctx context.Context, telemetry string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func (f *fakeAI) Summarize(ctx context.Context, items []domai.FindingSummary) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type fakeScanner struct{ results []scans.Finding }

func (f fakeScanner) Scan(ctx context.Context, target string) []scans.Finding {
	return f.results
}

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := sqlite.Connect(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &Service{
		Findings:   sqlite.NewFindingRepository(db),
		Rules:      sqlite.NewRuleRepository(db),
		Logs:       sqlite.NewJobLogRepository(db),
		Platforms:  sqlite.NewPlatformRepository(db),
		Targets:    sqlite.NewTargetRepository(db),
		Modules:    sqlite.NewModuleStatusRepository(db),
		Workers:    sqlite.NewWorkerRepository(db),
		Scanner:    fakeScanner{},
		Clock:      fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		AIProvider: "none",
		StaleAfter: 5 * time.Minute,
	}
}

func lastLog(t *testing.T, s *Service, job string) *joblog.Entry {
	t.Helper()
	entries, err := s.Logs.Recent(context.Background(), 50)
	require.NoError(t, err)
	for _, e := range entries {
		if e.Job == job {
			return e
		}
	}
	return nil
}

func TestRefreshShadowRulesUsesAICandidates(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	svc.AI = &fakeAI{candidates: []string{"body:stack_trace", "  ", "header:server_banner"}}
	svc.AIProvider = "openai"

	require.NoError(t, svc.RefreshShadowRules(ctx))

	shadow, err := svc.Rules.RecentShadow(ctx, 10)
	require.NoError(t, err)
	require.Len(t, shadow, 2, "blank lines are dropped")
	assert.Equal(t, "header:server_banner", shadow[0].Pattern)

	entry := lastLog(t, svc, JobShadowRules)
	require.NotNil(t, entry)
	assert.Equal(t, joblog.LevelInfo, entry.Level)
	assert.Equal(t, "2 candidate(s) stored", entry.Message)
}

func TestRefreshShadowRulesFallsBackOnAIError(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	svc.AI = &fakeAI{err: errors.New("quota exceeded")}
	svc.AIProvider = "openai"

	// AI failure must not surface: the static fallback set is stored instead.
	require.NoError(t, svc.RefreshShadowRules(ctx))

	shadow, err := svc.Rules.RecentShadow(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, shadow, len(fallbackCandidates))

	entries, err := svc.Logs.Recent(ctx, 10)
	require.NoError(t, err)
	var sawWarn bool
	for _, e := range entries {
		if e.Job == JobShadowRules && e.Level == joblog.LevelWarn {
			sawWarn = true
		}
	}
	assert.True(t, sawWarn, "AI failure must leave a WARN entry")
}

func TestRefreshShadowRulesWithoutAIClient(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.RefreshShadowRules(ctx))

	shadow, err := svc.Rules.RecentShadow(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, shadow, len(fallbackCandidates))

	// No AI configured means no failure, so no WARN entry either.
	entries, err := svc.Logs.Recent(ctx, 10)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, joblog.LevelWarn, e.Level)
	}
}

func TestPromoteLatestRule(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	// Empty shadow tier: clean no-op with an info entry.
	require.NoError(t, svc.PromoteLatestRule(ctx))
	entry := lastLog(t, svc, JobRulePromote)
	require.NotNil(t, entry)
	assert.Equal(t, joblog.LevelInfo, entry.Level)
	assert.Equal(t, "no shadow rule to promote", entry.Message)

	live, err := svc.Rules.RecentLive(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, live)

	// With shadow rules present the newest one is promoted.
	_, err = svc.Rules.AddShadow(ctx, "older")
	require.NoError(t, err)
	_, err = svc.Rules.AddShadow(ctx, "newest")
	require.NoError(t, err)

	require.NoError(t, svc.PromoteLatestRule(ctx))
	live, err = svc.Rules.RecentLive(ctx, 10)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "newest", live[0].Pattern)
}

func TestBountyRefreshQueuesDemoTargetsIdempotently(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Platforms.Upsert(ctx, "HackerOne", "", "", true)
	require.NoError(t, err)
	_, err = svc.Platforms.Upsert(ctx, "Intigriti", "", "", false)
	require.NoError(t, err)

	require.NoError(t, svc.BountyRefresh(ctx))

	targets, err := svc.Targets.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, targets, 1, "disabled platforms contribute nothing")
	assert.Equal(t, "hackerone-demo.example.com", targets[0].Target)
	assert.Equal(t, "demo", targets[0].Scope)

	entry := lastLog(t, svc, JobBountyRefresh)
	require.NotNil(t, entry)
	assert.Equal(t, "queued 1 target(s), 0 already present", entry.Message)

	// Second run sees the same pair already queued.
	require.NoError(t, svc.BountyRefresh(ctx))
	targets, err = svc.Targets.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, targets, 1)

	entry = lastLog(t, svc, JobBountyRefresh)
	require.NotNil(t, entry)
	assert.Equal(t, "queued 0 target(s), 1 already present", entry.Message)
}

func TestDrainScanQueueEmptyQueue(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.DrainScanQueue(ctx))

	entry := lastLog(t, svc, JobScanQueue)
	require.NotNil(t, entry)
	assert.Equal(t, "no targets in queue", entry.Message)
}

func TestDrainScanQueueCleanScan(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	svc.Scanner = fakeScanner{results: []scans.Finding{
		{Title: "Target reachable", Severity: findings.SeverityInfo, Details: "status=200"},
		{Title: "Low noise", Severity: findings.SeverityLow},
	}}

	pid, err := svc.Platforms.Upsert(ctx, "HackerOne", "", "", true)
	require.NoError(t, err)
	_, _, err = svc.Targets.Enqueue(ctx, pid, "clean.example.com", "demo")
	require.NoError(t, err)

	require.NoError(t, svc.DrainScanQueue(ctx))

	targets, err := svc.Targets.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, bounty.StatusScanned, targets[0].Status)

	// Two scanner findings plus the static summary finding.
	recent, err := svc.Findings.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "Scan Summary", recent[0].Title)
	assert.Equal(t, "2 finding(s). Review details in the dashboard.", recent[0].Details)

	entry := lastLog(t, svc, JobScanQueue)
	require.NotNil(t, entry)
	assert.Equal(t, "scanned clean.example.com (ok=true, findings=2)", entry.Message)
}

func TestDrainScanQueueActionableFindingFlipsOutcome(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	svc.Scanner = fakeScanner{results: []scans.Finding{
		{Title: "Target reachable", Severity: findings.SeverityInfo},
		{Title: "Missing headers", Severity: findings.SeverityMedium, Details: "X-Frame-Options"},
	}}

	pid, err := svc.Platforms.Upsert(ctx, "HackerOne", "", "", true)
	require.NoError(t, err)
	_, _, err = svc.Targets.Enqueue(ctx, pid, "weak.example.com", "demo")
	require.NoError(t, err)

	require.NoError(t, svc.DrainScanQueue(ctx))

	targets, err := svc.Targets.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, bounty.StatusError, targets[0].Status)

	entry := lastLog(t, svc, JobScanQueue)
	require.NotNil(t, entry)
	assert.Equal(t, "scanned weak.example.com (ok=false, findings=2)", entry.Message)
}

func TestDrainScanQueueSummaryFailureIsWarnOnly(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	svc.AI = &fakeAI{err: errors.New("backend down")}
	svc.Scanner = fakeScanner{results: []scans.Finding{
		{Title: "Target reachable", Severity: findings.SeverityInfo},
	}}

	pid, err := svc.Platforms.Upsert(ctx, "HackerOne", "", "", true)
	require.NoError(t, err)
	_, _, err = svc.Targets.Enqueue(ctx, pid, "clean.example.com", "demo")
	require.NoError(t, err)

	require.NoError(t, svc.DrainScanQueue(ctx))

	// Scan still completes ok; the only trace is a WARN entry.
	targets, err := svc.Targets.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, bounty.StatusScanned, targets[0].Status)

	entries, err := svc.Logs.Recent(ctx, 10)
	require.NoError(t, err)
	var sawWarn bool
	for _, e := range entries {
		if e.Job == JobScanQueue && e.Level == joblog.LevelWarn {
			sawWarn = true
		}
	}
	assert.True(t, sawWarn)
}

func TestWorkerLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	token, err := svc.RegisterWorker(ctx, "probe-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := svc.HeartbeatWorker(ctx, "probe-1", token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HeartbeatWorker(ctx, "probe-1", "bogus")
	require.NoError(t, err)
	assert.False(t, ok)

	online, err := svc.OnlineWorkers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, online)

	// Advance past the staleness threshold and sweep.
	svc.Clock = fakeClock{now: svc.Clock.Now().Add(10 * time.Minute)}
	require.NoError(t, svc.SweepStaleWorkers(ctx))

	online, err = svc.OnlineWorkers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, online)

	entry := lastLog(t, svc, JobWorkerSweep)
	require.NotNil(t, entry)
	assert.Equal(t, "1 stale worker(s) marked offline", entry.Message)
}

// Full pass over the recurring pipeline: platform in, target queued, scanned,
// rules generated and promoted.
func TestPipelineEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	svc.Scanner = fakeScanner{results: []scans.Finding{
		{Title: "Target reachable", Severity: findings.SeverityInfo},
	}}

	_, err := svc.Platforms.Upsert(ctx, "HackerOne", "https://api.hackerone.com", "", true)
	require.NoError(t, err)

	require.NoError(t, svc.BountyRefresh(ctx))
	require.NoError(t, svc.DrainScanQueue(ctx))
	require.NoError(t, svc.RefreshShadowRules(ctx))
	require.NoError(t, svc.PromoteLatestRule(ctx))

	progress, err := svc.Targets.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, bounty.Progress{Total: 1, Scanned: 1, Percent: 100}, progress)

	live, err := svc.Rules.RecentLive(ctx, 10)
	require.NoError(t, err)
	require.Len(t, live, 1)

	statuses, err := svc.Modules.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(statuses), 4)
}

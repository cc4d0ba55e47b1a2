package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appjobs "github.com/bryanwahyu/sentinel-aio/internal/application/jobs"
	"github.com/bryanwahyu/sentinel-aio/internal/config"
	"github.com/bryanwahyu/sentinel-aio/internal/middleware"
)

type Router struct {
	svc *appjobs.Service
	cfg *config.Config
}

// NewRouter mounts the dashboard API: read endpoints aggregate store state,
// trigger endpoints re-enter the same job bodies the scheduler runs.
func NewRouter(svc *appjobs.Service, cfg *config.Config, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc, cfg: cfg}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))
	mux.Use(middleware.Logging)
	mux.Use(middleware.Metrics)
	mux.Use(middleware.RateLimit(30, 5))

	mux.Get("/", r.wrap(r.handleDashboard))
	mux.Get("/modules", r.wrap(r.handleModules))
	mux.Get("/workers", r.wrap(r.handleWorkers))

	mux.Get("/healthz", middleware.HealthHandler(checkers))
	mux.Get("/config", r.wrap(r.handleConfig))
	mux.Get("/metrics", r.wrap(r.handleMetrics))
	mux.Method(http.MethodGet, "/metrics/prometheus", middleware.PrometheusHandler())

	mux.Post("/rules/shadow", r.wrap(r.handleAddShadowRule))
	mux.Post("/rules/promote", r.wrap(r.handlePromote))

	mux.Post("/jobs/fuzzing", r.wrap(r.handleFuzzing))
	mux.Post("/jobs/zero-day", r.wrap(r.handleZeroDayHunt))
	mux.Post("/bounties/refresh", r.wrap(r.handleBountyRefresh))
	mux.Post("/scan/queue", r.wrap(r.handleDrainQueue))

	mux.Post("/platforms", r.wrap(r.handleAddPlatform))
	mux.Post("/platforms/toggle", r.wrap(r.handleTogglePlatform))

	mux.Post("/workers/register", r.wrap(r.handleRegisterWorker))
	mux.Post("/workers/heartbeat", r.wrap(r.handleHeartbeat))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(v)
}

// metrics reads the live counters: running scans, online workers, progress.
func (r *Router) metrics(req *http.Request) (map[string]any, error) {
	ctx := req.Context()
	running, err := r.svc.Targets.CountScanning(ctx)
	if err != nil {
		return nil, err
	}
	online, err := r.svc.OnlineWorkers(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := r.svc.Targets.Progress(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"running_scans":   running,
		"running_workers": online,
		"progress":        progress,
	}, nil
}

// GET /
func (r *Router) handleDashboard(w http.ResponseWriter, req *http.Request) error {
	ctx := req.Context()
	recent, err := r.svc.Findings.Recent(ctx, 25)
	if err != nil {
		return err
	}
	shadow, err := r.svc.Rules.RecentShadow(ctx, 50)
	if err != nil {
		return err
	}
	live, err := r.svc.Rules.RecentLive(ctx, 50)
	if err != nil {
		return err
	}
	logEntries, err := r.svc.Logs.Recent(ctx, 50)
	if err != nil {
		return err
	}
	platforms, err := r.svc.Platforms.List(ctx)
	if err != nil {
		return err
	}
	targets, err := r.svc.Targets.Recent(ctx, 50)
	if err != nil {
		return err
	}
	mods, err := r.svc.Modules.List(ctx)
	if err != nil {
		return err
	}
	metrics, err := r.metrics(req)
	if err != nil {
		return err
	}

	return writeJSON(w, map[string]any{
		"findings":  recent,
		"shadow":    shadow,
		"live":      live,
		"jobs":      logEntries,
		"platforms": platforms,
		"targets":   targets,
		"modules":   mods,
		"metrics":   metrics,
		"config": map[string]any{
			"mode":               r.cfg.Mode,
			"openai_api_key_set": r.cfg.AI.OpenAIAPIKey != "",
		},
	})
}

// GET /modules
func (r *Router) handleModules(w http.ResponseWriter, req *http.Request) error {
	mods, err := r.svc.Modules.List(req.Context())
	if err != nil {
		return err
	}
	metrics, err := r.metrics(req)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"modules": mods, "metrics": metrics})
}

// GET /workers
func (r *Router) handleWorkers(w http.ResponseWriter, req *http.Request) error {
	list, err := r.svc.Workers.List(req.Context())
	if err != nil {
		return err
	}
	metrics, err := r.metrics(req)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"workers": list, "metrics": metrics})
}

// GET /config. Secrets are echoed as booleans, never as values.
func (r *Router) handleConfig(w http.ResponseWriter, req *http.Request) error {
	c := r.cfg
	return writeJSON(w, map[string]any{
		"ok": true,
		"config": map[string]any{
			"mode":                    c.Mode,
			"ai_provider":             c.AI.Provider,
			"openai_api_key_set":      c.AI.OpenAIAPIKey != "",
			"shadow_rules_interval":   c.Scheduler.ShadowRulesInterval,
			"hypothesis_interval":     c.Scheduler.HypothesisInterval,
			"threat_feed_interval":    c.Scheduler.ThreatFeedInterval,
			"bounty_refresh_interval": c.Scheduler.BountyRefreshInterval,
			"scan_queue_interval":     c.Scheduler.ScanQueueInterval,
			"worker_sweep_interval":   c.Scheduler.WorkerSweepInterval,
			"worker_offline_minutes":  c.Workers.OfflineAfterMinutes,
		},
	})
}

// GET /metrics
func (r *Router) handleMetrics(w http.ResponseWriter, req *http.Request) error {
	metrics, err := r.metrics(req)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "metrics": metrics})
}

// POST /rules/shadow accepts {"pattern": "..."} or a form field.
func (r *Router) handleAddShadowRule(w http.ResponseWriter, req *http.Request) error {
	pattern, ok := fieldFromJSONOrForm(req, "pattern")
	if !ok {
		http.Error(w, "pattern is required", http.StatusBadRequest)
		return nil
	}
	pattern = middleware.SanitizeString(pattern)
	if err := middleware.ValidatePattern(pattern); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	id, err := r.svc.Rules.AddShadow(req.Context(), pattern)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "id": id})
}

// POST /rules/promote
func (r *Router) handlePromote(w http.ResponseWriter, req *http.Request) error {
	if err := r.svc.PromoteLatestRule(req.Context()); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "message": "rule promotion triggered"})
}

// POST /jobs/fuzzing
func (r *Router) handleFuzzing(w http.ResponseWriter, req *http.Request) error {
	if err := r.svc.FuzzIteration(req.Context()); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "message": "fuzzing trigger"})
}

// POST /jobs/zero-day?mode=cautious
func (r *Router) handleZeroDayHunt(w http.ResponseWriter, req *http.Request) error {
	mode := middleware.SanitizeString(req.URL.Query().Get("mode"))
	if mode == "" {
		mode = "cautious"
	}
	if err := r.svc.ZeroDayHunt(req.Context(), mode); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "message": "zero-day hunt trigger", "mode": mode})
}

// POST /bounties/refresh
func (r *Router) handleBountyRefresh(w http.ResponseWriter, req *http.Request) error {
	if err := r.svc.BountyRefresh(req.Context()); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "message": "bounty refresh trigger"})
}

// POST /scan/queue
func (r *Router) handleDrainQueue(w http.ResponseWriter, req *http.Request) error {
	if err := r.svc.DrainScanQueue(req.Context()); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "message": "scan queue drain trigger"})
}

// POST /platforms accepts JSON or form (name, base_url, api_key).
func (r *Router) handleAddPlatform(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name    string `json:"name"`
		BaseURL string `json:"base_url"`
		APIKey  string `json:"api_key"`
	}
	if isJSON(req) {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return nil
		}
	} else {
		if err := req.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return nil
		}
		body.Name = req.PostFormValue("name")
		body.BaseURL = req.PostFormValue("base_url")
		body.APIKey = req.PostFormValue("api_key")
	}

	name := middleware.SanitizeString(body.Name)
	if err := middleware.ValidateName(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	id, err := r.svc.Platforms.Upsert(req.Context(), name,
		strings.TrimSpace(body.BaseURL), strings.TrimSpace(body.APIKey), true)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "id": id})
}

// POST /platforms/toggle
func (r *Router) handleTogglePlatform(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ID     int64 `json:"id"`
		Enable bool  `json:"enable"`
	}
	if isJSON(req) {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return nil
		}
	} else {
		if err := req.ParseForm(); err != nil {
			http.Error(w, "invalid form body", http.StatusBadRequest)
			return nil
		}
		id, err := strconv.ParseInt(req.PostFormValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid platform id", http.StatusBadRequest)
			return nil
		}
		body.ID = id
		body.Enable = req.PostFormValue("enable") == "1" || req.PostFormValue("enable") == "true"
	}
	if body.ID <= 0 {
		http.Error(w, "invalid platform id", http.StatusBadRequest)
		return nil
	}
	if err := r.svc.Platforms.SetEnabled(req.Context(), body.ID, body.Enable); err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true})
}

// POST /workers/register returns the rotated token, once.
func (r *Router) handleRegisterWorker(w http.ResponseWriter, req *http.Request) error {
	name, ok := fieldFromJSONOrForm(req, "name")
	if !ok {
		http.Error(w, "name is required", http.StatusBadRequest)
		return nil
	}
	name = middleware.SanitizeString(name)
	if err := middleware.ValidateName(name); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	token, err := r.svc.RegisterWorker(req.Context(), name)
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": true, "name": name, "token": token})
}

// POST /workers/heartbeat: {"name": "...", "token": "..."} -> {"ok": bool}
func (r *Router) handleHeartbeat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Name  string `json:"name"`
		Token string `json:"token"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return nil
	}
	ok, err := r.svc.HeartbeatWorker(req.Context(),
		strings.TrimSpace(body.Name), strings.TrimSpace(body.Token))
	if err != nil {
		return err
	}
	return writeJSON(w, map[string]any{"ok": ok})
}

func isJSON(req *http.Request) bool {
	return strings.HasPrefix(req.Header.Get("Content-Type"), "application/json")
}

// fieldFromJSONOrForm reads one named string field from either a JSON object
// or a form body.
func fieldFromJSONOrForm(req *http.Request, field string) (string, bool) {
	if isJSON(req) {
		var body map[string]string
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return "", false
		}
		v, ok := body[field]
		return v, ok && v != ""
	}
	if err := req.ParseForm(); err != nil {
		return "", false
	}
	v := req.PostFormValue(field)
	return v, v != ""
}

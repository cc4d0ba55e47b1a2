package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bryanwahyu/sentinel-aio/internal/application"
	appjobs "github.com/bryanwahyu/sentinel-aio/internal/application/jobs"
	"github.com/bryanwahyu/sentinel-aio/internal/application/sched"
	"github.com/bryanwahyu/sentinel-aio/internal/config"
	domai "github.com/bryanwahyu/sentinel-aio/internal/domain/ai"
	"github.com/bryanwahyu/sentinel-aio/internal/domain/scans"
	ollamaai "github.com/bryanwahyu/sentinel-aio/internal/infra/ai/ollama"
	openaiai "github.com/bryanwahyu/sentinel-aio/internal/infra/ai/openai"
	"github.com/bryanwahyu/sentinel-aio/internal/infra/db/sqlite"
	"github.com/bryanwahyu/sentinel-aio/internal/infra/httpserver"
	"github.com/bryanwahyu/sentinel-aio/internal/infra/scanner/headerscan"
	minioStore "github.com/bryanwahyu/sentinel-aio/internal/infra/storage"
	"github.com/bryanwahyu/sentinel-aio/internal/middleware"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	db, err := sqlite.Connect(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatalf("sqlite connect error: %v", err)
	}
	defer db.Close()

	var aiClient domai.Client
	switch cfg.AI.Provider {
	case "openai":
		if cfg.AI.OpenAIAPIKey == "" {
			log.Println("OPENAI_API_KEY missing, AI-assisted rule generation disabled")
		} else {
			aiClient = openaiai.NewClient(cfg.AI.OpenAIAPIKey, cfg.AI.OpenAIModel)
		}
	case "ollama":
		aiClient = ollamaai.NewClient(cfg.AI.OllamaHost, cfg.AI.OllamaModel)
	}

	var reports scans.ReportStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		reports = store
	}

	svc := &appjobs.Service{
		Findings:   sqlite.NewFindingRepository(db),
		Rules:      sqlite.NewRuleRepository(db),
		Logs:       sqlite.NewJobLogRepository(db),
		Platforms:  sqlite.NewPlatformRepository(db),
		Targets:    sqlite.NewTargetRepository(db),
		Modules:    sqlite.NewModuleStatusRepository(db),
		Workers:    sqlite.NewWorkerRepository(db),
		AI:         aiClient,
		Scanner:    headerscan.New(),
		Reports:    reports,
		Clock:      application.SystemClock{},
		AIProvider: cfg.AI.Provider,
		StaleAfter: cfg.WorkerOfflineAfter(),
	}

	scheduler := sched.New()
	addJob := func(id string, minutes int, run sched.Job) {
		scheduler.Add(id, time.Duration(minutes)*time.Minute, func(ctx context.Context) error {
			start := time.Now()
			err := run(ctx)
			middleware.ObserveJob(id, start, err)
			return err
		})
	}
	addJob(appjobs.JobShadowRules, cfg.Scheduler.ShadowRulesInterval, svc.RefreshShadowRules)
	addJob(appjobs.JobHypothesis, cfg.Scheduler.HypothesisInterval, svc.HypothesisLoop)
	addJob(appjobs.JobThreatFeed, cfg.Scheduler.ThreatFeedInterval, svc.ThreatFeedRefresh)
	addJob(appjobs.JobPrioritizer, cfg.PrioritizerInterval(), svc.PrioritizePaths)
	addJob(appjobs.JobBountyRefresh, cfg.Scheduler.BountyRefreshInterval, svc.BountyRefresh)
	addJob(appjobs.JobScanQueue, cfg.Scheduler.ScanQueueInterval, svc.DrainScanQueue)
	addJob(appjobs.JobWorkerSweep, cfg.Scheduler.WorkerSweepInterval, svc.SweepStaleWorkers)
	scheduler.Start()

	checkers := map[string]middleware.HealthChecker{
		"database": middleware.HealthCheckerFunc(db.Ping),
	}
	handler := httpserver.NewRouter(svc, cfg, checkers)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	// Cancel timers first; in-flight job bodies finish on their own.
	scheduler.Stop()

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"seoauditor/internal/config"
	"seoauditor/internal/core/audits"
	"seoauditor/internal/core/crawler"
	"seoauditor/internal/core/fixer"
	"seoauditor/internal/core/pipeline"
	"seoauditor/internal/core/queue"
	"seoauditor/internal/health"
	"seoauditor/internal/logger"
	"seoauditor/internal/platform/browser"
	"seoauditor/internal/platform/llm"
	rds "seoauditor/internal/platform/redis"
	"seoauditor/internal/server"
	"seoauditor/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log.Printf("[seoauditor] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	checkers := map[string]health.Checker{}

	// Redis is optional; without it the crawler just skips snapshot caching.
	var redisSvc *rds.Service
	if cfg.RedisAddr != "" {
		svc, err := rds.New(rds.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer svc.Close()
		redisSvc = svc
		checkers["redis"] = svc.HealthCheck
	}

	// Persistence: Postgres when configured, in-memory otherwise.
	var store storage.Store
	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pg.Close()
		store = pg
		checkers["database"] = pg.HealthCheck
	} else {
		logr.LogWarnf("DATABASE_URL not set, using in-memory storage")
		store = storage.NewMemory()
	}

	// Completion model; absent key means deterministic fallbacks only.
	var completer llm.Completer
	if cfg.GeminiAPIKey != "" {
		llmSvc, err := llm.NewService(llm.Config{
			Provider: cfg.LLMProvider,
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.DefaultLLMModel,
		})
		if err != nil {
			log.Fatalf("llm: %v", err)
		}
		completer = llmSvc
	} else {
		logr.LogWarnf("GEMINI_API_KEY not set, AI fixes will use deterministic fallbacks")
	}

	crawlSvc := crawler.New(browser.NewPlaywright(), redisSvc, cfg.CrawlMaxPages, cfg.CrawlUserAgent)
	fixSvc := fixer.New(completer)

	var uploader pipeline.ReportUploader
	if artifacts := storage.NewArtifacts(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseBucket); artifacts != nil {
		uploader = artifacts
	}

	jobQueue := queue.New(store, cfg.ProgressGrace)
	worker := pipeline.NewWorker(jobQueue, store, crawlSvc, fixSvc, uploader, cfg.WorkerConcurrency)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	worker.Start(workerCtx)

	app := fiber.New(fiber.Config{
		AppName: "SEO Auditor",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	deps := server.Dependencies{
		Audits:   audits.NewService(store, jobQueue),
		Checkers: checkers,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	go func() {
		time.Sleep(2 * time.Second) // Allow services to fully initialize
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfof("shutting down...")
		workerCancel()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}

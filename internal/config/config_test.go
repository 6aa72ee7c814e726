package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, ":8082", cfg.HTTPAddr)
	assert.Equal(t, 20, cfg.CrawlMaxPages)
	assert.Equal(t, "SeoAuditorBot/1.0", cfg.CrawlUserAgent)
	assert.Equal(t, 2, cfg.WorkerConcurrency)
	assert.Equal(t, time.Minute, cfg.ProgressGrace)
	assert.Equal(t, "gemini", cfg.LLMProvider)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CRAWL_MAX_PAGES", "5")
	t.Setenv("WORKER_CONCURRENCY", "4")
	t.Setenv("PROGRESS_GRACE_SECONDS", "120")
	t.Setenv("HTTP_ADDR", ":9000")

	cfg := Load()
	assert.Equal(t, 5, cfg.CrawlMaxPages)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, 2*time.Minute, cfg.ProgressGrace)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
}

func TestGetenvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("CRAWL_MAX_PAGES", "lots")
	cfg := Load()
	assert.Equal(t, 20, cfg.CrawlMaxPages)
}

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string

	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseBucket     string

	LLMProvider     string
	GeminiAPIKey    string
	DefaultLLMModel string

	CrawlMaxPages     int
	CrawlUserAgent    string
	WorkerConcurrency int
	ProgressGrace     time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Load() Config {
	return Config{
		AppEnv:   getenv("APP_ENV", "development"),
		HTTPAddr: getenv("HTTP_ADDR", ":8082"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:     getenv("SUPABASE_STORAGE_BUCKET", "audit-reports"),

		LLMProvider:     getenv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		DefaultLLMModel: getenv("DEFAULT_LLM_MODEL", "gemini-1.5-flash"),

		CrawlMaxPages:     getenvInt("CRAWL_MAX_PAGES", 20),
		CrawlUserAgent:    getenv("CRAWL_USER_AGENT", "SeoAuditorBot/1.0"),
		WorkerConcurrency: getenvInt("WORKER_CONCURRENCY", 2),
		ProgressGrace:     time.Duration(getenvInt("PROGRESS_GRACE_SECONDS", 60)) * time.Second,
	}
}

package config

import (
	"log/slog"
	"os"
)

func Load() App {
	cfg := App{
		Port:         getenv("APP_PORT", "8080"),
		DatabaseURL:  must("DATABASE_URL"),
		JWTSecret:    getenv("JWT_SECRET", "local_dev_secret"),
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		HFToken:      os.Getenv("HF_TOKEN"),
		Env:          getenv("APP_ENV", "dev"),
	}
	if cfg.GoogleAPIKey == "" || cfg.HFToken == "" {
		// The API still serves; search and emotion enrichment degrade.
		slog.Warn("AI provider credentials missing, enrichment will degrade",
			"google", cfg.GoogleAPIKey != "", "hf", cfg.HFToken != "")
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}

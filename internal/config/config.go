package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DBDSN       string
	LLMEndpoint string // optional local chat-completion endpoint; empty disables it
	LogFile     string
}

func Load() Config {
	// Best-effort .env for local dev; real deployments set the environment.
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getEnv("ADDR", ":8080"),
		DBDSN:       getEnv("DB_DSN", "bookineo.db"),
		LLMEndpoint: getEnv("LLM_ENDPOINT", ""),
		LogFile:     getEnv("LOG_FILE", ""),
	}
	log.Printf("[config] ADDR=%s DB_DSN=%s LLM_ENDPOINT=%s LOG_FILE=%s", cfg.Addr, cfg.DBDSN, cfg.LLMEndpoint, cfg.LogFile)
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

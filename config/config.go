// Package config loads per-concern configuration from environment
// variables, with an optional .env file for local development.
package config

import (
	"log"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// loadEnv loads .env from the working directory once. Missing files are
// fine; real deployments set the environment directly.
func loadEnv() {
	envOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Printf("config: .env not found, using process environment")
		}
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

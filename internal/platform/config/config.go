package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string

	RoundsTotal   int
	RoundDuration time.Duration

	PythonBin               string
	ExecutionTimeout        time.Duration
	MaxConcurrentExecutions int64

	CORSAllowedOrigins []string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = &Config{
		APIPort:                 getEnv("API_PORT", "8080"),
		RoundsTotal:             getEnvAsInt("ROUNDS_TOTAL", 5),
		RoundDuration:           time.Duration(getEnvAsInt("ROUND_DURATION_SECONDS", 300)) * time.Second,
		PythonBin:               getEnv("PYTHON_BIN", "python3"),
		ExecutionTimeout:        time.Duration(getEnvAsInt("EXECUTION_TIMEOUT_SECONDS", 5)) * time.Second,
		MaxConcurrentExecutions: int64(getEnvAsInt("MAX_CONCURRENT_EXECUTIONS", 4)),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS",
			[]string{"http://localhost:5173", "http://127.0.0.1:5173"}),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	parts := strings.Split(valueStr, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

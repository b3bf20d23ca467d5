package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server Settings
	AppPort         string
	HOST            string
	ShutdownTimeout time.Duration

	// Database Settings
	DBDriver    string // 'postgres' or 'sqlite'
	DatabaseURL string
	DBDebug     bool
	DBReset     bool
	SeedDemo    bool

	// JWT Settings
	JWTSecret string

	// Poll throttling. Disabled when RedisAddr is empty.
	RedisAddr     string
	RedisPassword string
	PollLimit     int
	PollWindow    time.Duration

	// CORS Settings
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
}

func LoadConfig() (*Config, error) {
	// A .env file is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	config := &Config{
		AppPort:     getEnv("PORT", "8080"),
		HOST:        getEnv("HOST", "0.0.0.0"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", "meetup_chat.db"),
		DBDebug:     os.Getenv("DB_DEBUG") == "true",
		DBReset:     os.Getenv("DB_RESET") == "true",
		SeedDemo:    os.Getenv("SEED_DEMO") == "true",

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		CORSAllowOrigins: []string{"*"},
		CORSAllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		CORSAllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.DBDriver != "postgres" && config.DBDriver != "sqlite" {
		return nil, fmt.Errorf("DB_DRIVER must be 'postgres' or 'sqlite', got %q", config.DBDriver)
	}

	var err error
	if config.PollLimit, err = getEnvInt("POLL_LIMIT", 120); err != nil {
		return nil, err
	}
	if config.PollWindow, err = getEnvDuration("POLL_WINDOW", time.Minute); err != nil {
		return nil, err
	}
	if config.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, v)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

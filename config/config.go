package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Settlement SettlementConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// SettlementConfig controls the daily run: when it fires, where "today"
// is evaluated, and how wide the per-investment worker pool is.
type SettlementConfig struct {
	Timezone      string        // IANA name, e.g. Asia/Kolkata
	CronSpec      string        // standard 5-field cron expression
	Workers       int           // bounded pool; 1 means sequential
	UnitTimeout   time.Duration // per-investment transaction budget
	RetryAttempts int           // scheduler-level retries on a fatal run
	RetryDelay    time.Duration
	RunOnStart    bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getenv("SERVER_PORT", "8088"),
			Env:          getenv("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             getenv("DATABASE_DSN", "root:@tcp(localhost:3306)/oyoinvest?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			Secret: getenv("JWT_SECRET", "change-me-in-production"),
			Expiry: 24 * time.Hour,
			Issuer: "oyo-investment",
		},
		Settlement: SettlementConfig{
			Timezone:      getenv("SETTLEMENT_TZ", "Asia/Kolkata"),
			CronSpec:      getenv("SETTLEMENT_CRON", "5 0 * * *"), // 00:05 local, daily
			Workers:       getenvInt("SETTLEMENT_WORKERS", 4),
			UnitTimeout:   15 * time.Second,
			RetryAttempts: getenvInt("SETTLEMENT_RETRIES", 3),
			RetryDelay:    time.Minute,
			RunOnStart:    os.Getenv("SETTLEMENT_RUN_ON_START") == "true",
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Package config loads runtime configuration from the environment,
// optionally via a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads a .env file if present. A missing file is not an
// error — env vars set some other way (CI, systemd, a real shell) are
// just as valid.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// GetEnv returns the value of key, or fallback if unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Postgres holds connection parameters for internal/store/pg.
type Postgres struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
	SSLMode  string
}

// PostgresFromEnv reads DB_USER, DB_PASS, DB_HOST, DB_PORT, DB_NAME,
// DB_SSLMODE, defaulting to a local Postgres instance.
func PostgresFromEnv() Postgres {
	return Postgres{
		User:     GetEnv("DB_USER", "postgres"),
		Password: GetEnv("DB_PASS", ""),
		Host:     GetEnv("DB_HOST", "localhost"),
		Port:     GetEnv("DB_PORT", "5432"),
		Database: GetEnv("DB_NAME", "postgres"),
		SSLMode:  GetEnv("DB_SSLMODE", "disable"),
	}
}

// DSN renders a postgres connection string suitable for pgx/stdlib.
func (p Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// Thresholds are the matcher's confidence-gate constants. They are
// empirically tuned policy, not ground truth, so they live in
// configuration rather than the matcher itself.
type Thresholds struct {
	MinVotes        int
	MinSnippetRatio float64
	MinStoreRatio   float64
}

// DefaultThresholds returns the tuned (5, 0.006, 0.004) triple.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinVotes:        5,
		MinSnippetRatio: 0.006,
		MinStoreRatio:   0.004,
	}
}

// ThresholdsFromEnv reads MATCH_MIN_VOTES, MATCH_MIN_SNIPPET_RATIO,
// and MATCH_MIN_STORE_RATIO, falling back to DefaultThresholds for any
// that are unset or unparsable.
func ThresholdsFromEnv() Thresholds {
	t := DefaultThresholds()
	if v := os.Getenv("MATCH_MIN_VOTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			t.MinVotes = n
		}
	}
	if v := os.Getenv("MATCH_MIN_SNIPPET_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			t.MinSnippetRatio = f
		}
	}
	if v := os.Getenv("MATCH_MIN_STORE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			t.MinStoreRatio = f
		}
	}
	return t
}

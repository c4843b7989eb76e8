// Package config loads application configuration from environment
// variables. Required variables abort startup with a fatal log;
// optional subsystems (Redis, the message broker) degrade gracefully
// when theirs are absent.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all required runtime configuration values, one field
// per environment variable.
type Config struct {
	Env            string // APP_ENV: dev, test or prod
	Port           string // APP_PORT: HTTP port to listen on
	DBUser         string // DB_USER
	DBPass         string // DB_PASS (empty allowed)
	DBHost         string // DB_HOST
	DBPort         string // DB_PORT
	DBName         string // DB_NAME
	JWTSecret      string // JWT_SECRET: HS256 signing secret
	AccessTTLMin   int    // ACCESS_TOKEN_TTL_MIN
	RefreshTTLDays int    // REFRESH_TOKEN_TTL_DAYS
	BcryptCost     int    // BCRYPT_COST
}

// Load reads the required environment variables into a Config,
// exiting fatally when one is missing or malformed.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
	}
}

func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// Helpers shared by the optional-subsystem loaders in this package.

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	case "0", "false", "FALSE", "False", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			return dur
		}
	}
	return d
}

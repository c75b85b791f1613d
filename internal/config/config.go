/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment   string
	HTTPBind      string
	HTTPPort      int
	DBBackend     DatabaseBackend
	DBDSN         string // Empty disables plan persistence
	JWTSigningKey string // Empty disables API authentication
	MetricsBind   string
	OutputDir     string // Local directory for exported timetables
	Timezone      string // Anchors calendar exports

	// AutoExportFormat uploads every new plan in this format; empty disables.
	AutoExportFormat string

	// Assignment
	AssignmentSeed int64 // 0 picks a time-based seed per process

	// S3 Object Storage configuration
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string // Empty keeps exports on the local filesystem
	S3Endpoint        string // For S3-compatible services (MinIO, Spaces, etc.)
	S3UsePathStyle    bool   // Required for MinIO

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Plan cache
	RedisAddr     string // Empty disables the cache
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Event fan-out
	NATSURL string // Empty keeps events in process
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:   getEnv("NIGHTWATCH_ENV", "development"),
		HTTPBind:      getEnv("NIGHTWATCH_HTTP_BIND", "0.0.0.0"),
		HTTPPort:      getEnvInt("NIGHTWATCH_HTTP_PORT", 8080),
		DBBackend:     DatabaseBackend(getEnv("NIGHTWATCH_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:         getEnv("NIGHTWATCH_DB_DSN", ""),
		JWTSigningKey: getEnv("NIGHTWATCH_JWT_SIGNING_KEY", ""),
		MetricsBind:   getEnv("NIGHTWATCH_METRICS_BIND", ""),
		OutputDir:     getEnv("NIGHTWATCH_OUTPUT_DIR", "./timetables"),
		Timezone:      getEnv("NIGHTWATCH_TIMEZONE", "UTC"),

		AutoExportFormat: getEnv("NIGHTWATCH_AUTO_EXPORT_FORMAT", ""),

		AssignmentSeed: getEnvInt64("NIGHTWATCH_ASSIGNMENT_SEED", 0),

		S3AccessKeyID:     getEnvAny([]string{"NIGHTWATCH_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"NIGHTWATCH_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"NIGHTWATCH_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnv("NIGHTWATCH_S3_BUCKET", ""),
		S3Endpoint:        getEnv("NIGHTWATCH_S3_ENDPOINT", ""),
		S3UsePathStyle:    getEnvBool("NIGHTWATCH_S3_USE_PATH_STYLE", false),

		TracingEnabled:    getEnvBool("NIGHTWATCH_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("NIGHTWATCH_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("NIGHTWATCH_TRACING_SAMPLE_RATE", 1.0),

		RedisAddr:     getEnv("NIGHTWATCH_REDIS_ADDR", ""),
		RedisPassword: getEnv("NIGHTWATCH_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("NIGHTWATCH_REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvInt("NIGHTWATCH_CACHE_TTL_MINUTES", 60)) * time.Minute,

		NATSURL: getEnv("NIGHTWATCH_NATS_URL", ""),
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("NIGHTWATCH_HTTP_PORT out of range: %d", cfg.HTTPPort)
	}

	if cfg.TracingSampleRate < 0 || cfg.TracingSampleRate > 1 {
		return nil, fmt.Errorf("NIGHTWATCH_TRACING_SAMPLE_RATE must be between 0 and 1, got %v", cfg.TracingSampleRate)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("NIGHTWATCH_TIMEZONE: %w", err)
	}

	if strings.EqualFold(cfg.Environment, "production") && cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("NIGHTWATCH_JWT_SIGNING_KEY must be provided in production")
	}

	return cfg, nil
}

// HTTPAddr is the listen address for the API server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}

// Location is the configured time zone, or UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PersistenceEnabled reports whether plans are stored in a database.
func (c *Config) PersistenceEnabled() bool {
	return c != nil && c.DBDSN != ""
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

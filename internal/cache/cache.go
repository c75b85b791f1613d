/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based cache for planned timetables.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultPlanTTL is how long a timetable stays cached.
const DefaultPlanTTL = 1 * time.Hour

// Key prefixes for Redis cache
const (
	KeyPlan   = "nightwatch:cache:plan:"   // + plan_id
	KeyDigest = "nightwatch:cache:digest:" // + roster digest
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PlanTTL       time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		PlanTTL:        DefaultPlanTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback. A nil *Cache
// is valid and never hits.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance. An unreachable Redis yields a disabled
// cache, not an error.
func New(cfg Config, logger zerolog.Logger) *Cache {
	if cfg.PlanTTL <= 0 {
		cfg.PlanTTL = DefaultPlanTTL
	}
	logger = logger.With().Str("component", "cache").Logger()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		_ = client.Close()
		return &Cache{logger: logger, config: cfg, disabled: true}
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")
	return &Cache{client: client, logger: logger, config: cfg}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	return true, nil
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// delete removes keys from cache.
func (c *Cache) delete(ctx context.Context, keys ...string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// GetPlan decodes the cached timetable for planID into dest.
func (c *Cache) GetPlan(ctx context.Context, planID string, dest any) bool {
	found, err := c.get(ctx, KeyPlan+planID, dest)
	if err != nil || !found {
		return false
	}
	c.logger.Debug().Str("plan_id", planID).Msg("plan cache hit")
	return true
}

// SetPlan caches a timetable under its ID and, when digest is not empty,
// records which plan the digest produced.
func (c *Cache) SetPlan(ctx context.Context, planID, digest string, plan any) error {
	if !c.IsAvailable() {
		return nil
	}
	if err := c.set(ctx, KeyPlan+planID, plan, c.config.PlanTTL); err != nil {
		return err
	}
	if digest == "" {
		return nil
	}
	return c.set(ctx, KeyDigest+digest, planID, c.config.PlanTTL)
}

// LookupDigest returns the plan ID previously produced for digest.
func (c *Cache) LookupDigest(ctx context.Context, digest string) (string, bool) {
	var planID string
	found, err := c.get(ctx, KeyDigest+digest, &planID)
	if err != nil || !found || planID == "" {
		return "", false
	}
	return planID, true
}

// InvalidatePlan removes a plan and its digest entry.
func (c *Cache) InvalidatePlan(ctx context.Context, planID, digest string) error {
	if !c.IsAvailable() {
		return nil
	}
	c.logger.Debug().Str("plan_id", planID).Msg("invalidating plan cache")
	keys := []string{KeyPlan + planID}
	if digest != "" {
		keys = append(keys, KeyDigest+digest)
	}
	return c.delete(ctx, keys...)
}

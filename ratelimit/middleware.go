// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package ratelimit

import (
	"context"
	"fmt"

	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

// Handler processes a descriptor on behalf of an agent, the same
// signature core/agentrt.Hooks.Process reduces to once fromID and slots
// are bound by the caller.
type Handler func(ctx context.Context, agentID string, d *descriptor.Descriptor) error

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// MiddlewareConfig holds middleware configuration
type MiddlewareConfig struct {
	// Limiter is the rate limiter to use
	Limiter Limiter

	// KeyFunc generates the rate limit key from the processing agent and
	// the descriptor it is about to process
	KeyFunc func(ctx context.Context, agentID string, d *descriptor.Descriptor) string

	// OnRateLimitExceeded is called when rate limit is exceeded
	OnRateLimitExceeded func(ctx context.Context, agentID string, d *descriptor.Descriptor, key string) error
}

// DefaultMiddlewareConfig returns default middleware configuration: one
// rate limit bucket per agent, regardless of which descriptor it is
// processing.
func DefaultMiddlewareConfig() MiddlewareConfig {
	return MiddlewareConfig{
		KeyFunc: func(_ context.Context, agentID string, _ *descriptor.Descriptor) string {
			return agentID
		},
		OnRateLimitExceeded: func(_ context.Context, agentID string, _ *descriptor.Descriptor, key string) error {
			return fmt.Errorf("rate limit exceeded for agent %s (key %s)", agentID, key)
		},
	}
}

// NewMiddleware creates a new rate limiting middleware
func NewMiddleware(config MiddlewareConfig) Middleware {
	if config.KeyFunc == nil {
		config = DefaultMiddlewareConfig()
	}

	return func(next Handler) Handler {
		return func(ctx context.Context, agentID string, d *descriptor.Descriptor) error {
			key := config.KeyFunc(ctx, agentID, d)

			if !config.Limiter.Allow(key) {
				if config.OnRateLimitExceeded != nil {
					return config.OnRateLimitExceeded(ctx, agentID, d, key)
				}
				return fmt.Errorf("rate limit exceeded")
			}

			return next(ctx, agentID, d)
		}
	}
}

// NewTokenBucketMiddleware creates a token bucket rate limiting middleware
func NewTokenBucketMiddleware(config TokenBucketConfig, keyFunc func(context.Context, string, *descriptor.Descriptor) string) Middleware {
	limiter := NewTokenBucket(config)

	middlewareConfig := DefaultMiddlewareConfig()
	middlewareConfig.Limiter = limiter
	if keyFunc != nil {
		middlewareConfig.KeyFunc = keyFunc
	}

	return NewMiddleware(middlewareConfig)
}

// NewSlidingWindowMiddleware creates a sliding window rate limiting middleware
func NewSlidingWindowMiddleware(config SlidingWindowConfig, keyFunc func(context.Context, string, *descriptor.Descriptor) string) Middleware {
	limiter := NewSlidingWindow(config)

	middlewareConfig := DefaultMiddlewareConfig()
	middlewareConfig.Limiter = limiter
	if keyFunc != nil {
		middlewareConfig.KeyFunc = keyFunc
	}

	return NewMiddleware(middlewareConfig)
}

// NewDistributedMiddleware creates a distributed rate limiting middleware
func NewDistributedMiddleware(config DistributedConfig, keyFunc func(context.Context, string, *descriptor.Descriptor) string) (Middleware, error) {
	limiter, err := NewDistributed(config)
	if err != nil {
		return nil, err
	}

	middlewareConfig := DefaultMiddlewareConfig()
	middlewareConfig.Limiter = limiter
	if keyFunc != nil {
		middlewareConfig.KeyFunc = keyFunc
	}

	return NewMiddleware(middlewareConfig), nil
}

// PerAgentKeyFunc generates a key from the processing agent's ID alone,
// ignoring which descriptor triggered the call.
func PerAgentKeyFunc(_ context.Context, agentID string, _ *descriptor.Descriptor) string {
	return fmt.Sprintf("agent:%s", agentID)
}

// PerDomainKeyFunc generates a key from the descriptor's domain, throttling
// every agent processing within that domain together.
func PerDomainKeyFunc(_ context.Context, _ string, d *descriptor.Descriptor) string {
	return fmt.Sprintf("domain:%s", d.Domain)
}

// GlobalKeyFunc generates a global key (single rate limit for all)
func GlobalKeyFunc(_ context.Context, _ string, _ *descriptor.Descriptor) string {
	return "global"
}

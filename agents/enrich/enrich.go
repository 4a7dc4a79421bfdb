// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package enrich

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/dev-pro-jma/rebus/core/agentrt"
	"github.com/dev-pro-jma/rebus/observability/logging"
	"github.com/dev-pro-jma/rebus/observability/metrics"
	"github.com/dev-pro-jma/rebus/pkg/descriptor"
	"github.com/dev-pro-jma/rebus/ratelimit"
)

const bodySlot = "body"

// Config parameterizes an enrich Agent.
type Config struct {
	Domain string
	// BodyPattern selects the descriptors to summarize; the sole slot.
	BodyPattern string
	// PromptPrefix is prepended to the descriptor's value before asking
	// the provider for a summary.
	PromptPrefix string
	// MaxCallsPerSecond throttles Provider.Summarize calls; 0 disables
	// throttling. Guards against a burst of matching descriptors driving
	// an LLM API past its own rate limit.
	MaxCallsPerSecond float64
	// BurstCapacity is the token bucket's burst allowance; defaults to
	// MaxCallsPerSecond rounded up to 1 when unset.
	BurstCapacity int
	// Metrics records call/latency/error counters for every Summarize
	// call; nil disables recording.
	Metrics *metrics.LLMMetrics
}

// Agent is the "enrich" demo agent: a slot-aggregating agent with exactly
// one slot, whose Process calls out to an LLM Provider and pushes the
// resulting summary back onto the bus as a new descriptor, linked to its
// source via DeclareLink.
type Agent struct {
	*agentrt.Runtime

	provider     Provider
	bodyPattern  *regexp.Regexp
	promptPrefix string
	logger       logging.Logger
	metrics      *metrics.LLMMetrics
}

// New builds an enrich Agent and its underlying Runtime.
func New(cfg Config, provider Provider, client agentrt.BusClient, logger logging.Logger) (*Agent, error) {
	re, err := regexp.Compile(cfg.BodyPattern)
	if err != nil {
		return nil, fmt.Errorf("enrich: invalid body pattern %q: %w", cfg.BodyPattern, err)
	}

	prefix := cfg.PromptPrefix
	if prefix == "" {
		prefix = "Summarize the following in one sentence:\n\n"
	}

	a := &Agent{
		provider:     provider,
		bodyPattern:  re,
		promptPrefix: prefix,
		logger:       logger,
		metrics:      cfg.Metrics,
	}

	rtCfg := agentrt.Config{
		Name:   "enrich",
		Mode:   agentrt.ModeAutomatic,
		Domain: cfg.Domain,
		Slots:  []string{bodySlot},
		FullConfig: map[string]interface{}{
			"provider":     provider.Name(),
			"body_pattern": cfg.BodyPattern,
		},
	}

	if cfg.MaxCallsPerSecond > 0 {
		burst := cfg.BurstCapacity
		if burst <= 0 {
			burst = int(math.Ceil(cfg.MaxCallsPerSecond))
		}
		rtCfg.RateLimiter = ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{
			Rate:     cfg.MaxCallsPerSecond,
			Capacity: burst,
		})
		rtCfg.RateLimitKeyFunc = ratelimit.PerAgentKeyFunc
	}

	a.Runtime = agentrt.New(rtCfg, a, client, logger)

	return a, nil
}

// SelectorFilter implements agentrt.Hooks: the single declared slot is
// filled by anything matching BodyPattern.
func (a *Agent) SelectorFilter(selector string) (string, bool) {
	if a.bodyPattern.MatchString(selector) {
		return bodySlot, true
	}
	return "", false
}

// DescriptorFilter implements agentrt.Hooks: enrich never skips a
// completed slot set.
func (a *Agent) DescriptorFilter(*descriptor.Descriptor, map[string]*descriptor.Descriptor) bool {
	return true
}

// Process implements agentrt.Hooks. It asks the configured Provider to
// summarize the body descriptor's value and pushes a /summary/ descriptor
// linked back to the source.
func (a *Agent) Process(target *descriptor.Descriptor, _ string, slots map[string]*descriptor.Descriptor) error {
	body, ok := slots[bodySlot]
	if !ok {
		body = target
	}

	start := time.Now()
	summary, err := a.provider.Summarize(context.Background(), a.promptPrefix+string(body.Value))
	if err != nil {
		if a.metrics != nil {
			a.metrics.RecordError(a.provider.Name(), a.provider.Model(), "summarize")
		}
		return fmt.Errorf("enrich: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordCall(a.provider.Name(), a.provider.Model(), time.Since(start).Seconds())
	}

	hash := descriptor.ContentHash([]byte(summary), 8)
	selector := fmt.Sprintf("/summary/%%%s", hash)
	out := descriptor.NewDescriptor(body.Domain, selector, body.UUID, "summary:"+a.provider.Name(), []byte(summary), []string{body.Selector})
	out.Credit("enrich")

	if !a.Push(out) {
		return fmt.Errorf("enrich: summary descriptor %s already existed", selector)
	}

	a.DeclareLink(body, out, "summarizes", "enrich agent via "+a.provider.Name())
	return nil
}

// SaveState implements agentrt.Hooks: enrich is stateless.
func (a *Agent) SaveState() ([]byte, error) { return nil, nil }

// RestoreState implements agentrt.Hooks.
func (a *Agent) RestoreState([]byte) error { return nil }

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

// Package bus implements the Bus Dispatcher (component D): the central
// coordinator agents join, push descriptors through, and query. It wires
// together the Descriptor Store, Lock Table, Retry Scheduler and Cycle
// Guard and owns the synchronous, reentrant dispatch of
// on_new_descriptor-style notifications.
package bus

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dev-pro-jma/rebus/core/cycleguard"
	"github.com/dev-pro-jma/rebus/core/lock"
	"github.com/dev-pro-jma/rebus/core/retry"
	"github.com/dev-pro-jma/rebus/core/store"
	"github.com/dev-pro-jma/rebus/observability/logging"
	"github.com/dev-pro-jma/rebus/pkg/descriptor"
	rebuserrors "github.com/dev-pro-jma/rebus/pkg/errors"
)

// Agent is the contract the bus dispatches notifications through (component
// E's bus-facing surface). Runtimes built on top of core/agentrt satisfy it.
type Agent interface {
	// Name identifies the agent independent of any particular join; several
	// joined instances may share one Name.
	Name() string

	// FullConfigFingerprint is the JSON fingerprint (§6) of the agent's
	// entire configuration.
	FullConfigFingerprint() string

	// OutputConfigFingerprint is the fingerprint restricted to
	// output-altering keys; it is what distinguishes logical instances for
	// locking and retry-counter purposes.
	OutputConfigFingerprint() string

	// OnNewDescriptor runs the notification state machine for one
	// descriptor arrival.
	OnNewDescriptor(fromID, domain, uuid, selector string, requestID int) error

	// OnIdle drains queued idle-mode work, if any, and reports whether it
	// did something.
	OnIdle() bool
}

// Runner is implemented by agents with a long-running, non-consuming entry
// point. RunAgents starts one worker per Runner and waits for all of them
// to return before entering the idle-drain loop.
type Runner interface {
	Run(ctx context.Context) error
}

// agentEntry is the bus's bookkeeping record for one joined agent instance.
type agentEntry struct {
	id     string
	name   string
	domain string
	agent  Agent
}

// Bus is the Bus Dispatcher. Build with New.
type Bus struct {
	store     store.Store
	guard     *cycleguard.Guard
	locks     *lock.Table
	scheduler *retry.Scheduler
	logger    logging.Logger

	mu         sync.RWMutex
	byID       map[string]*agentEntry
	order      []string
	nameSeq    map[string]int
	requestSeq int64
}

// New builds a Bus over st, guarded by g, logging through logger.
func New(st store.Store, g *cycleguard.Guard, logger logging.Logger) *Bus {
	b := &Bus{
		store:   st,
		guard:   g,
		logger:  logger,
		byID:    make(map[string]*agentEntry),
		nameSeq: make(map[string]int),
	}
	b.scheduler = retry.NewScheduler()
	b.locks = lock.NewTable(b, b.scheduler, b.redeliver)
	return b
}

// ResolveAgent implements lock.AgentIdentity.
func (b *Bus) ResolveAgent(agentID string) (name, configFP string, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.byID[agentID]
	if !ok {
		return "", "", false
	}
	return e.name, e.agent.OutputConfigFingerprint(), true
}

func (b *Bus) redeliver(agentID, domain, selector string) {
	b.mu.RLock()
	e, ok := b.byID[agentID]
	b.mu.RUnlock()
	if !ok {
		return
	}
	d, ok := b.store.GetDescriptor(domain, selector)
	if !ok {
		b.logger.Warn(context.Background(), "retry target descriptor vanished",
			logging.String("agent_id", agentID), logging.String("domain", domain), logging.String("selector", selector))
		return
	}
	b.dispatchOne(e, agentID, domain, d.UUID, selector, 0)
}

// Join allocates a monotonically increasing numeric suffix so that
// "<name>-<n>" is unique for the bus's lifetime, records the agent under
// domain, and returns the assigned id.
func (b *Bus) Join(agent Agent, domain string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	name := agent.Name()
	n := b.nameSeq[name]
	b.nameSeq[name] = n + 1
	id := fmt.Sprintf("%s-%d", name, n)

	b.byID[id] = &agentEntry{id: id, name: name, domain: domain, agent: agent}
	b.order = append(b.order, id)
	return id
}

func (b *Bus) snapshotEntries() []*agentEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entries := make([]*agentEntry, 0, len(b.order))
	for _, id := range b.order {
		entries = append(entries, b.byID[id])
	}
	return entries
}

func (b *Bus) dispatchOne(e *agentEntry, fromID, domain, uuid, selector string, requestID int) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(context.Background(), "agent notification panicked",
				logging.String("agent_id", e.id), logging.Any("panic", r))
		}
	}()
	if err := e.agent.OnNewDescriptor(fromID, domain, uuid, selector, requestID); err != nil {
		b.logger.Error(context.Background(), "agent notification failed",
			logging.String("agent_id", e.id), logging.Error(err))
	}
}

// Push consults the Cycle Guard; on rejection it returns false without
// storing. Otherwise it delegates to the Store; if d was newly inserted, it
// delivers the descriptor to every joined agent via OnNewDescriptor with
// request_id 0. Errors from one agent's notification are caught and logged;
// they never abort dispatch to the remaining agents.
func (b *Bus) Push(agentID string, d *descriptor.Descriptor) bool {
	b.mu.RLock()
	producer, known := b.byID[agentID]
	b.mu.RUnlock()

	producerName := agentID
	if known {
		producerName = producer.name
	}

	if !b.guard.Accept(d, producerName, b.store) {
		return false
	}
	if !b.store.Add(d) {
		return false
	}

	for _, e := range b.snapshotEntries() {
		b.dispatchOne(e, agentID, d.Domain, d.UUID, d.Selector, 0)
	}
	return true
}

// Get is a pass-through to the Store.
func (b *Bus) Get(domain, selector string) (*descriptor.Descriptor, bool) {
	return b.store.GetDescriptor(domain, selector)
}

// GetValue is a pass-through to the Store.
func (b *Bus) GetValue(domain, selector string) ([]byte, bool) {
	return b.store.GetValue(domain, selector)
}

// Find is a pass-through to the Store.
func (b *Bus) Find(domain, selectorRegex string, limit, offset int) ([]string, error) {
	return b.store.Find(domain, selectorRegex, limit, offset)
}

// FindBySelector is a pass-through to the Store.
func (b *Bus) FindBySelector(domain, selectorPrefix string, limit, offset int) ([]string, error) {
	return b.store.FindBySelector(domain, selectorPrefix, limit, offset)
}

// FindByUUID is a pass-through to the Store.
func (b *Bus) FindByUUID(domain, uuid string) ([]string, error) {
	return b.store.FindByUUID(domain, uuid)
}

// FindByValue is a pass-through to the Store.
func (b *Bus) FindByValue(domain, selectorPrefix, valueRegex string) ([]string, error) {
	return b.store.FindByValue(domain, selectorPrefix, valueRegex)
}

// ListUUIDs is a pass-through to the Store.
func (b *Bus) ListUUIDs(domain string) map[string]struct{} {
	return b.store.ListUUIDs(domain)
}

// ProcessedStats is a pass-through to the Store.
func (b *Bus) ProcessedStats(domain string) map[string]store.AgentStats {
	return b.store.ProcessedStats(domain)
}

// GetChildren is a pass-through to the Store.
func (b *Bus) GetChildren(domain, selector string, recurse bool) []*descriptor.Descriptor {
	return b.store.GetChildren(domain, selector, recurse)
}

// ListAgents returns the distinct names currently joined to the bus, sorted.
func (b *Bus) ListAgents() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	seen := make(map[string]struct{})
	names := make([]string, 0, len(b.order))
	for _, id := range b.order {
		name := b.byID[id].name
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarkProcessed injects the calling agent's name and output-config
// fingerprint and delegates to the Store.
func (b *Bus) MarkProcessed(agentID, domain, selector string) {
	name, fp, ok := b.ResolveAgent(agentID)
	if !ok {
		return
	}
	b.store.MarkProcessed(domain, selector, name, fp)
}

// MarkProcessable injects the calling agent's name and output-config
// fingerprint and delegates to the Store.
func (b *Bus) MarkProcessable(agentID, domain, selector string) {
	name, fp, ok := b.ResolveAgent(agentID)
	if !ok {
		return
	}
	b.store.MarkProcessable(domain, selector, name, fp)
}

// GetProcessable is a pass-through to the Store.
func (b *Bus) GetProcessable(domain, selector string) []descriptor.AgentKey {
	return b.store.GetProcessable(domain, selector)
}

// Lock delegates to the Lock Table.
func (b *Bus) Lock(agentID, lockID, domain, selector string) bool {
	return b.locks.Lock(agentID, lockID, domain, selector)
}

// Unlock delegates to the Lock Table, which owns the retry-counter and
// Retry Scheduler handoff.
func (b *Bus) Unlock(agentID, lockID, domain, selector string, failed bool, retries int, wait time.Duration) {
	b.locks.Unlock(agentID, lockID, domain, selector, failed, retries, wait)
}

// RequestProcessing increments the bus's monotonic user-request counter and
// invokes OnNewDescriptor on every joined agent whose name is in targets,
// passing the fresh counter value as request_id. Errors in individual
// targets are isolated from one another.
func (b *Bus) RequestProcessing(agentID, domain, selector string, targets map[string]struct{}) int {
	requestID := int(atomic.AddInt64(&b.requestSeq, 1))

	d, ok := b.store.GetDescriptor(domain, selector)
	if !ok {
		b.logger.Warn(context.Background(), "request_processing target descriptor missing",
			logging.String("domain", domain), logging.String("selector", selector))
		return requestID
	}

	for _, e := range b.snapshotEntries() {
		if _, want := targets[e.name]; !want {
			continue
		}
		b.dispatchOne(e, agentID, domain, d.UUID, selector, requestID)
	}
	return requestID
}

// StoreInternalState delegates to the Store when it advertises support for
// persisted agent state.
func (b *Bus) StoreInternalState(agentName string, data []byte) error {
	if !b.store.SupportsAgentState() {
		return rebuserrors.ErrConfigurationError.WithDetail("reason", "store does not support agent state")
	}
	return b.store.StoreAgentState(agentName, data)
}

// LoadInternalState delegates to the Store when it advertises support for
// persisted agent state.
func (b *Bus) LoadInternalState(agentName string) ([]byte, bool, error) {
	if !b.store.SupportsAgentState() {
		return nil, false, nil
	}
	return b.store.LoadAgentState(agentName)
}

// RunAgents starts one worker per joined agent that implements Runner,
// waits for all of them to return, then repeatedly polls every agent's
// OnIdle until a full pass performs no work. It returns the first worker
// error, if any, after every worker has exited.
func (b *Bus) RunAgents(ctx context.Context) error {
	entries := b.snapshotEntries()

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		runner, ok := e.agent.(Runner)
		if !ok {
			continue
		}
		e := e
		g.Go(func() error {
			if err := runner.Run(gctx); err != nil {
				return fmt.Errorf("agent %s: %w", e.id, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for {
		progressed := false
		for _, e := range entries {
			if e.agent.OnIdle() {
				progressed = true
			}
		}
		if !progressed {
			return nil
		}
	}
}

// Shutdown stops the Retry Scheduler, discarding any pending re-injections.
func (b *Bus) Shutdown() {
	b.scheduler.Stop()
}

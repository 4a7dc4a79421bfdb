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

// Package agentrt implements the Agent Runtime (component E): the
// notification state machine, slot aggregation, idle-drain queue, and
// internal-state persistence that every concrete agent is built on top of.
// Concrete agents implement Hooks; the Runtime supplies everything the Bus
// Dispatcher expects from a joined participant.
package agentrt

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dev-pro-jma/rebus/observability/logging"
	"github.com/dev-pro-jma/rebus/pkg/descriptor"
	"github.com/dev-pro-jma/rebus/ratelimit"
)

// Mode is an agent's operation mode.
type Mode string

const (
	ModeAutomatic   Mode = "automatic"
	ModeInteractive Mode = "interactive"
	ModeIdle        Mode = "idle"
)

// DefaultDomain is the domain value that means "no domain restriction".
const DefaultDomain = "default"

// BusClient is the slice of the Bus Dispatcher the runtime depends on. Any
// type with this method set works, notably *bus.Bus.
type BusClient interface {
	Push(agentID string, d *descriptor.Descriptor) bool
	Get(domain, selector string) (*descriptor.Descriptor, bool)
	GetValue(domain, selector string) ([]byte, bool)
	MarkProcessed(agentID, domain, selector string)
	MarkProcessable(agentID, domain, selector string)
	GetProcessable(domain, selector string) []descriptor.AgentKey
	Lock(agentID, lockID, domain, selector string) bool
	Unlock(agentID, lockID, domain, selector string, failed bool, retries int, wait time.Duration)
	RequestProcessing(agentID, domain, selector string, targets map[string]struct{}) int
	StoreInternalState(agentName string, data []byte) error
	LoadInternalState(agentName string) ([]byte, bool, error)
}

// Hooks is what a concrete agent provides. All methods are mandatory;
// agents with no slots, no persisted state, or no filtering simply return
// the neutral value (true, nil, empty slice).
type Hooks interface {
	// SelectorFilter reports whether the agent is interested in selector.
	// For slot-aggregating agents, slot names which of the declared slots
	// this selector fills; for non-slot agents slot is ignored.
	SelectorFilter(selector string) (slot string, interested bool)

	// DescriptorFilter decides whether to actually process target, given
	// the resolved slot descriptors (empty for non-slot agents).
	DescriptorFilter(target *descriptor.Descriptor, slots map[string]*descriptor.Descriptor) bool

	// Process does the agent's real work. Returning an error triggers a
	// failed unlock and, if the agent has retry budget, a scheduled retry.
	Process(target *descriptor.Descriptor, fromID string, slots map[string]*descriptor.Descriptor) error

	// SaveState produces an opaque blob capturing whatever the agent needs
	// to resume identically. Return nil, nil if there is nothing to save.
	SaveState() ([]byte, error)

	// RestoreState consumes a blob earlier produced by SaveState. data is
	// nil if no prior state existed.
	RestoreState(data []byte) error
}

// SlotPolicy is an optional interface a Hooks implementation can satisfy to
// override the default "all declared slots filled" readiness check.
type SlotPolicy interface {
	SlotsReady(filled map[string]string) bool
}

// RetryPolicy is an optional interface letting an agent choose its own
// retry budget and delay on a failed Process call. Agents that don't
// implement it get zero retries, matching the spec's default.
type RetryPolicy interface {
	OnProcessFailure(target *descriptor.Descriptor) (retries int, wait time.Duration)
}

// Config parameterizes one Runtime instance.
type Config struct {
	// Name identifies the agent.
	Name string
	// Mode is the chosen operation mode (one of the agent's supported
	// modes).
	Mode Mode
	// Domain restricts notifications to a single non-default domain; ""
	// or DefaultDomain means unrestricted.
	Domain string
	// Slots declares ordered slot names for aggregating agents; empty
	// means no aggregation.
	Slots []string
	// FullConfig is the agent's entire configuration, fingerprinted on
	// join.
	FullConfig map[string]interface{}
	// OutputAlteringKeys restricts the output-config fingerprint to these
	// keys; nil fingerprints every FullConfig key except "operationmode".
	OutputAlteringKeys []string
	// RateLimiter, if set, throttles Process invocations. A call denied by
	// the limiter is treated the same as a DescriptorFilter rejection: the
	// triggering selector is still marked processed, just not acted on.
	RateLimiter ratelimit.Limiter
	// RateLimitKeyFunc derives the limiter key from the processing agent
	// and the target descriptor; defaults to ratelimit.PerAgentKeyFunc.
	RateLimitKeyFunc func(ctx context.Context, agentID string, d *descriptor.Descriptor) string
}

// idleEntry is one notification deferred for idle-mode bulk drain.
type idleEntry struct {
	from, domain, selector string
}

// Runtime wraps Hooks with the dispatch machinery the Bus Dispatcher
// expects from a joined agent. Build with New, then Join it to a bus and
// call RestoreInternalState once an agent id is assigned.
type Runtime struct {
	cfg    Config
	hooks  Hooks
	bus    BusClient
	logger logging.Logger

	fullFP   string
	outputFP string

	mu           sync.Mutex
	agentID      string
	pendingSlots map[string]map[string]string
	forIdle      []idleEntry
	processStart time.Time
}

// New builds a Runtime. Call SetAgentID with the id returned from
// bus.Join(rt, cfg.Domain) before delivering any notifications.
func New(cfg Config, hooks Hooks, client BusClient, logger logging.Logger) *Runtime {
	allKeys := make([]string, 0, len(cfg.FullConfig))
	for k := range cfg.FullConfig {
		allKeys = append(allKeys, k)
	}

	return &Runtime{
		cfg:          cfg,
		hooks:        hooks,
		bus:          client,
		logger:       logger,
		fullFP:       descriptor.Fingerprint(cfg.FullConfig, allKeys),
		outputFP:     descriptor.Fingerprint(cfg.FullConfig, cfg.OutputAlteringKeys),
		pendingSlots: make(map[string]map[string]string),
	}
}

// SetAgentID records the id the bus assigned on Join. Must be called before
// the runtime receives notifications or is asked to persist/restore state.
func (r *Runtime) SetAgentID(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agentID = id
}

// Name implements the bus's Agent contract.
func (r *Runtime) Name() string { return r.cfg.Name }

// FullConfigFingerprint implements the bus's Agent contract.
func (r *Runtime) FullConfigFingerprint() string { return r.fullFP }

// OutputConfigFingerprint implements the bus's Agent contract.
func (r *Runtime) OutputConfigFingerprint() string { return r.outputFP }

func (r *Runtime) id() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.agentID
}

// Push forwards to the bus, stamping the descriptor's processing time from
// the most recent Process invocation if the agent left it unmeasured.
func (r *Runtime) Push(d *descriptor.Descriptor) bool {
	r.mu.Lock()
	if d.ProcessingTime == descriptor.UnmeasuredProcessingTime && !r.processStart.IsZero() {
		d.ProcessingTime = time.Since(r.processStart).Seconds()
	}
	r.mu.Unlock()
	return r.bus.Push(r.id(), d)
}

// DeclareLink requests two /link/ descriptors bridging desc1 and desc2 and
// pushes both.
func (r *Runtime) DeclareLink(desc1, desc2 *descriptor.Descriptor, linkType, reason string) {
	r.Push(r.buildLink(desc1, desc2, linkType, reason))
	r.Push(r.buildLink(desc2, desc1, linkType, reason))
}

func (r *Runtime) buildLink(from, to *descriptor.Descriptor, linkType, reason string) *descriptor.Descriptor {
	hash := descriptor.SelectorHash(from.Selector, to.Selector, linkType)
	selector := fmt.Sprintf("/link/%s/%%%s", linkType, hash)
	d := descriptor.NewDescriptor(from.Domain, selector, from.UUID, reason, []byte(reason), []string{from.Selector, to.Selector})
	d.Credit(r.cfg.Name)
	return d
}

// OnNewDescriptor runs the notification state machine (§4.E).
func (r *Runtime) OnNewDescriptor(from, domain, uuid, selector string, requestID int) error {
	agentID := r.id()

	if r.cfg.Domain != "" && r.cfg.Domain != DefaultDomain && domain != r.cfg.Domain {
		r.bus.MarkProcessed(agentID, domain, selector)
		return nil
	}

	slot, interested := r.hooks.SelectorFilter(selector)
	if !interested {
		r.bus.MarkProcessed(agentID, domain, selector)
		return nil
	}

	if len(r.cfg.Slots) > 0 {
		ready := r.recordSlot(uuid, slot, selector)
		if !ready {
			r.bus.MarkProcessable(agentID, domain, selector)
			return nil
		}
	}

	if r.cfg.Mode == ModeInteractive && requestID == 0 {
		r.bus.MarkProcessable(agentID, domain, selector)
		return nil
	}

	if r.cfg.Mode == ModeIdle {
		r.bus.MarkProcessable(agentID, domain, selector)
		r.mu.Lock()
		r.forIdle = append(r.forIdle, idleEntry{from: from, domain: domain, selector: selector})
		r.mu.Unlock()
		return nil
	}

	return r.callProcess(from, domain, uuid, selector, requestID)
}

// recordSlot fills slot for uuid's pending aggregation and reports whether
// the slot set is now ready for processing.
func (r *Runtime) recordSlot(uuid, slot, selector string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	filled, ok := r.pendingSlots[uuid]
	if !ok {
		filled = make(map[string]string)
		r.pendingSlots[uuid] = filled
	}
	filled[slot] = selector

	if policy, ok := r.hooks.(SlotPolicy); ok {
		return policy.SlotsReady(filled)
	}
	return len(filled) == len(r.cfg.Slots)
}

func (r *Runtime) paddedLockSelector(filled map[string]string) string {
	parts := make([]string, len(r.cfg.Slots))
	for i, slotName := range r.cfg.Slots {
		if sel, ok := filled[slotName]; ok {
			parts[i] = sel
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, "!")
}

// callProcess implements the locked process invocation shared by direct
// notification and idle drain.
func (r *Runtime) callProcess(fromID, domain, uuid, triggerSelector string, requestID int) error {
	agentID := r.id()

	var filledSlots map[string]string
	lockSelector := triggerSelector
	if len(r.cfg.Slots) > 0 {
		r.mu.Lock()
		filledSlots = make(map[string]string, len(r.pendingSlots[uuid]))
		for k, v := range r.pendingSlots[uuid] {
			filledSlots[k] = v
		}
		r.mu.Unlock()
		lockSelector = r.paddedLockSelector(filledSlots)
	}

	lockKey := r.cfg.Name + r.outputFP + strconv.Itoa(requestID)
	if !r.bus.Lock(agentID, lockKey, domain, lockSelector) {
		// another instance of the same logical agent already holds it.
		return nil
	}

	target, ok := r.bus.Get(domain, triggerSelector)
	if !ok {
		r.logger.Warn(context.Background(), "target descriptor missing at process time",
			logging.String("agent", r.cfg.Name), logging.String("domain", domain), logging.String("selector", triggerSelector))
		r.bus.Unlock(agentID, lockKey, domain, lockSelector, false, 0, 0)
		return nil
	}

	slotDescriptors := make(map[string]*descriptor.Descriptor, len(filledSlots))
	for slotName, sel := range filledSlots {
		if d, ok := r.bus.Get(domain, sel); ok {
			slotDescriptors[slotName] = d
		}
	}

	selectorsToMark := []string{triggerSelector}
	if len(r.cfg.Slots) > 0 {
		selectorsToMark = make([]string, 0, len(filledSlots))
		for _, sel := range filledSlots {
			selectorsToMark = append(selectorsToMark, sel)
		}
	}

	var procErr error
	if r.hooks.DescriptorFilter(target, slotDescriptors) {
		r.mu.Lock()
		r.processStart = time.Now()
		r.mu.Unlock()
		procErr = r.runProcess(target, fromID, slotDescriptors)
	}

	if len(r.cfg.Slots) > 0 {
		r.mu.Lock()
		delete(r.pendingSlots, uuid)
		r.mu.Unlock()
	}

	if procErr != nil {
		retries, wait := 0, time.Duration(0)
		if policy, ok := r.hooks.(RetryPolicy); ok {
			retries, wait = policy.OnProcessFailure(target)
		}
		r.bus.Unlock(agentID, lockKey, domain, lockSelector, true, retries, wait)
		return procErr
	}

	r.bus.Unlock(agentID, lockKey, domain, lockSelector, false, 0, 0)
	for _, sel := range selectorsToMark {
		r.bus.MarkProcessed(agentID, domain, sel)
	}
	return nil
}

func (r *Runtime) runProcess(target *descriptor.Descriptor, fromID string, slots map[string]*descriptor.Descriptor) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("agent %s panicked while processing %s:%s: %v", r.cfg.Name, target.Domain, target.Selector, rec)
		}
	}()

	if r.cfg.RateLimiter != nil {
		keyFunc := r.cfg.RateLimitKeyFunc
		if keyFunc == nil {
			keyFunc = ratelimit.PerAgentKeyFunc
		}
		key := keyFunc(context.Background(), r.cfg.Name, target)
		if !r.cfg.RateLimiter.Allow(key) {
			r.logger.Warn(context.Background(), "process throttled",
				logging.String("agent", r.cfg.Name), logging.String("selector", target.Selector))
			return nil
		}
	}

	return r.hooks.Process(target, fromID, slots)
}

// OnIdle implements the bus's Agent contract: it drains every notification
// queued by idle-mode dispatch, processes each, and reports whether it did
// any work.
func (r *Runtime) OnIdle() bool {
	if r.cfg.Mode != ModeIdle {
		return false
	}

	r.mu.Lock()
	entries := r.forIdle
	r.forIdle = nil
	r.mu.Unlock()

	if len(entries) == 0 {
		return false
	}

	for _, e := range entries {
		d, ok := r.bus.Get(e.domain, e.selector)
		if !ok {
			continue
		}
		if err := r.callProcess(e.from, e.domain, d.UUID, e.selector, 0); err != nil {
			r.logger.Error(context.Background(), "idle drain process failed",
				logging.String("agent", r.cfg.Name), logging.Error(err))
		}
	}
	return true
}

// persistedState pairs the agent's opaque state blob with the pending-slots
// map, matching the bus's internal-state contract (§3): both halves are
// saved and restored together.
type persistedState struct {
	Hooks        []byte
	PendingSlots map[string]map[string]string
}

// SaveInternalState produces the agent's state blob, pairs it with the
// current pending-slots map, and hands both to the bus. Call at shutdown.
func (r *Runtime) SaveInternalState() error {
	blob, err := r.hooks.SaveState()
	if err != nil {
		return err
	}

	r.mu.Lock()
	snapshot := make(map[string]map[string]string, len(r.pendingSlots))
	for uuid, slots := range r.pendingSlots {
		copySlots := make(map[string]string, len(slots))
		for k, v := range slots {
			copySlots[k] = v
		}
		snapshot[uuid] = copySlots
	}
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(persistedState{Hooks: blob, PendingSlots: snapshot}); err != nil {
		return err
	}
	return r.bus.StoreInternalState(r.cfg.Name, buf.Bytes())
}

// RestoreInternalState retrieves and splits the persisted pair, repopulating
// pending_slots before handing the opaque half back to the agent. Call at
// startup, before any notifications are delivered.
func (r *Runtime) RestoreInternalState() error {
	data, ok, err := r.bus.LoadInternalState(r.cfg.Name)
	if err != nil {
		return err
	}
	if !ok {
		return r.hooks.RestoreState(nil)
	}

	var ps persistedState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&ps); err != nil {
		return err
	}

	r.mu.Lock()
	if ps.PendingSlots != nil {
		r.pendingSlots = ps.PendingSlots
	}
	r.mu.Unlock()

	return r.hooks.RestoreState(ps.Hooks)
}

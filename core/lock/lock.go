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

// Package lock implements the Lock Table (component B): a per-domain set of
// active processing locks keyed by (lock-id, domain, selector), plus the
// retry counters that pair a failed unlock with a re-injection through the
// Retry Scheduler.
package lock

import (
	"sync"
	"time"
)

// lockKey identifies one in-flight processing lock.
type lockKey struct {
	lockID   string
	domain   string
	selector string
}

// retryKey identifies one retry budget. It is keyed by the agent's identity
// rather than its bus-assigned id, so repeated failures from different
// instances of the same configured agent share one budget.
type retryKey struct {
	agentName string
	configFP  string
	domain    string
	selector  string
}

// AgentIdentity resolves a bus-assigned agent id to the (name,
// output-config-fingerprint) pair the retry counter is keyed on. The Bus
// Dispatcher, which owns the join registry, implements this.
type AgentIdentity interface {
	ResolveAgent(agentID string) (name, configFP string, ok bool)
}

// Scheduler defers a function call. *retry.Scheduler satisfies this.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
}

// Redeliver re-injects (domain, selector) to agentID through the bus's
// normal notification path, as if a fresh push had just happened.
type Redeliver func(agentID, domain, selector string)

// Table is the Lock Table. Zero value is not usable; build with NewTable.
type Table struct {
	mu            sync.Mutex
	locks         map[lockKey]string // value is the holding agent_id, for diagnostics
	retryCounters map[retryKey]int

	identity  AgentIdentity
	scheduler Scheduler
	redeliver Redeliver
}

// NewTable builds an empty Lock Table. identity resolves agent ids to
// (name, configFP) for retry-counter keying; scheduler and redeliver wire
// failed unlocks to the Retry Scheduler's re-injection path.
func NewTable(identity AgentIdentity, scheduler Scheduler, redeliver Redeliver) *Table {
	return &Table{
		locks:         make(map[lockKey]string),
		retryCounters: make(map[retryKey]int),
		identity:      identity,
		scheduler:     scheduler,
		redeliver:     redeliver,
	}
}

// Lock atomically tests for presence of (lockID, domain, selector); it
// inserts and returns true on absence, false on presence.
func (t *Table) Lock(agentID, lockID, domain, selector string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := lockKey{lockID: lockID, domain: domain, selector: selector}
	if _, held := t.locks[key]; held {
		return false
	}
	t.locks[key] = agentID
	return true
}

// Unlock removes (lockID, domain, selector) if present. Unknown locks
// unlock to no effect. When failed is true, it consults the retry counter
// for (agent-name(agentID), output-config(agentID), domain, selector):
// initializes it to retries if unset; if currently positive, decrements it
// and schedules a re-injection after wait; if zero, gives up silently.
func (t *Table) Unlock(agentID, lockID, domain, selector string, failed bool, retries int, wait time.Duration) {
	t.mu.Lock()
	key := lockKey{lockID: lockID, domain: domain, selector: selector}
	delete(t.locks, key)

	if !failed {
		t.mu.Unlock()
		return
	}

	name, configFP, ok := t.identity.ResolveAgent(agentID)
	if !ok {
		t.mu.Unlock()
		return
	}

	rk := retryKey{agentName: name, configFP: configFP, domain: domain, selector: selector}
	remaining, seen := t.retryCounters[rk]
	if !seen {
		remaining = retries
	}

	if remaining <= 0 {
		delete(t.retryCounters, rk)
		t.mu.Unlock()
		return
	}

	remaining--
	t.retryCounters[rk] = remaining
	t.mu.Unlock()

	t.scheduler.Schedule(wait, func() {
		t.redeliver(agentID, domain, selector)
	})
}

// Held reports whether (lockID, domain, selector) is currently locked, and
// by which agent id. It exists for diagnostics and tests; the dispatcher
// never needs it on the hot path.
func (t *Table) Held(lockID, domain, selector string) (agentID string, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	agentID, ok = t.locks[lockKey{lockID: lockID, domain: domain, selector: selector}]
	return agentID, ok
}

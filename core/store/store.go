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

// Package store implements the content-addressed Descriptor Store: the
// bus's single source of truth for descriptors and their per-agent
// processing markers (component A of the coordination core).
package store

import (
	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

// AgentStats summarizes an agent's processing activity within a domain.
type AgentStats struct {
	Processed   int
	Processable int
}

// Store is the interface the bus depends on. A single logical write must be
// atomic with respect to concurrent readers; implementations are free to
// choose their own locking strategy as long as that holds.
type Store interface {
	// Add inserts d if (d.Domain, d.Selector) is new. Returns true on
	// insertion, false if the pair was already present (idempotent,
	// not an error).
	Add(d *descriptor.Descriptor) bool

	// GetDescriptor returns the descriptor for (domain, selector), or false
	// if absent.
	GetDescriptor(domain, selector string) (*descriptor.Descriptor, bool)

	// GetValue returns the opaque payload for (domain, selector), or false
	// if absent.
	GetValue(domain, selector string) ([]byte, bool)

	// Find returns selectors in domain matching selectorRegex, ordered and
	// paginated by limit/offset. Results are stable for a fixed store
	// state.
	Find(domain, selectorRegex string, limit, offset int) ([]string, error)

	// FindBySelector returns selectors in domain with the given prefix.
	FindBySelector(domain, selectorPrefix string, limit, offset int) ([]string, error)

	// FindByUUID returns every selector in domain sharing uuid.
	FindByUUID(domain, uuid string) ([]string, error)

	// FindByValue returns selectors in domain with the given selector
	// prefix whose value matches valueRegex.
	FindByValue(domain, selectorPrefix, valueRegex string) ([]string, error)

	// ListUUIDs returns the set of UUIDs present in domain.
	ListUUIDs(domain string) map[string]struct{}

	// MarkProcessed advances the marker for (agentName, configFP) on
	// (domain, selector) to Processed. Monotone: a transition from
	// Processed back to Processable is silently ignored.
	MarkProcessed(domain, selector, agentName, configFP string)

	// MarkProcessable advances the marker to Processable, unless it is
	// already Processed.
	MarkProcessable(domain, selector, agentName, configFP string)

	// GetProcessable returns every (agentName, configFP) pair currently
	// marked Processable for (domain, selector).
	GetProcessable(domain, selector string) []descriptor.AgentKey

	// ProcessedStats summarizes, per agent name, how many descriptors in
	// domain are Processed vs Processable for that agent (across all of
	// its configuration fingerprints).
	ProcessedStats(domain string) map[string]AgentStats

	// GetChildren returns descriptors whose precursor list contains
	// selector. If recurse is true, it also follows precursor edges
	// transitively.
	GetChildren(domain, selector string, recurse bool) []*descriptor.Descriptor

	// SupportsAgentState reports whether this store can persist agent
	// state (in memory or in a configured backend). The bus uses this to decide whether
	// Store/LoadAgentState are meaningful.
	SupportsAgentState() bool

	// StoreAgentState persists an opaque state blob for agentName.
	StoreAgentState(agentName string, data []byte) error

	// LoadAgentState retrieves the previously persisted state blob for
	// agentName, or ok=false if none exists.
	LoadAgentState(agentName string) (data []byte, ok bool, err error)
}

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

package store

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

// AgentStateBackend persists the opaque agent-state blob the bus hands to
// the store on graceful shutdown and restores on join. MemoryStore uses an
// in-process map by default; storage.Storage-backed implementations (Redis,
// Postgres) plug in through WithAgentStateBackend.
type AgentStateBackend interface {
	Store(agentName string, data []byte) error
	Load(agentName string) (data []byte, ok bool, err error)
}

// memoryAgentState is the zero-dependency default AgentStateBackend.
type memoryAgentState struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func newMemoryAgentState() *memoryAgentState {
	return &memoryAgentState{blobs: make(map[string][]byte)}
}

func (m *memoryAgentState) Store(agentName string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[agentName] = append([]byte(nil), data...)
	return nil
}

func (m *memoryAgentState) Load(agentName string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[agentName]
	return data, ok, nil
}

// MemoryStore is an in-memory implementation of Store. All state-changing
// operations are serialized under mu, so a single logical write is atomic
// with respect to concurrent readers.
type MemoryStore struct {
	mu sync.RWMutex

	descriptors map[descriptor.Key]*descriptor.Descriptor
	markers     map[descriptor.Key]map[descriptor.AgentKey]descriptor.Marker
	// precursorIndex[domain][precursorSelector] -> child selectors
	precursorIndex map[string]map[string][]string

	agentState AgentStateBackend
}

// Option configures a MemoryStore at construction time.
type Option func(*MemoryStore)

// WithAgentStateBackend overrides the default in-memory agent-state
// backend, typically with a durable storage.Storage adapter.
func WithAgentStateBackend(backend AgentStateBackend) Option {
	return func(s *MemoryStore) {
		s.agentState = backend
	}
}

// NewMemoryStore creates an empty in-memory descriptor store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		descriptors:    make(map[descriptor.Key]*descriptor.Descriptor),
		markers:        make(map[descriptor.Key]map[descriptor.AgentKey]descriptor.Marker),
		precursorIndex: make(map[string]map[string][]string),
		agentState:     newMemoryAgentState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add implements Store.
func (s *MemoryStore) Add(d *descriptor.Descriptor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := d.Key()
	if _, exists := s.descriptors[key]; exists {
		return false
	}

	s.descriptors[key] = d
	s.markers[key] = make(map[descriptor.AgentKey]descriptor.Marker)

	if s.precursorIndex[d.Domain] == nil {
		s.precursorIndex[d.Domain] = make(map[string][]string)
	}
	for _, p := range d.Precursors {
		s.precursorIndex[d.Domain][p] = append(s.precursorIndex[d.Domain][p], d.Selector)
	}
	return true
}

// GetDescriptor implements Store.
func (s *MemoryStore) GetDescriptor(domain, selector string) (*descriptor.Descriptor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.descriptors[descriptor.Key{Domain: domain, Selector: selector}]
	return d, ok
}

// GetValue implements Store.
func (s *MemoryStore) GetValue(domain, selector string) ([]byte, bool) {
	d, ok := s.GetDescriptor(domain, selector)
	if !ok {
		return nil, false
	}
	return d.Value, true
}

func (s *MemoryStore) selectorsInDomain(domain string) []string {
	selectors := make([]string, 0)
	for key := range s.descriptors {
		if key.Domain == domain {
			selectors = append(selectors, key.Selector)
		}
	}
	sort.Strings(selectors)
	return selectors
}

func paginate(items []string, limit, offset int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []string{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// Find implements Store.
func (s *MemoryStore) Find(domain, selectorRegex string, limit, offset int) ([]string, error) {
	re, err := regexp.Compile(selectorRegex)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := s.selectorsInDomain(domain)
	s.mu.RUnlock()

	matched := make([]string, 0, len(all))
	for _, sel := range all {
		if re.MatchString(sel) {
			matched = append(matched, sel)
		}
	}
	return paginate(matched, limit, offset), nil
}

// FindBySelector implements Store.
func (s *MemoryStore) FindBySelector(domain, selectorPrefix string, limit, offset int) ([]string, error) {
	s.mu.RLock()
	all := s.selectorsInDomain(domain)
	s.mu.RUnlock()

	matched := make([]string, 0, len(all))
	for _, sel := range all {
		if strings.HasPrefix(sel, selectorPrefix) {
			matched = append(matched, sel)
		}
	}
	return paginate(matched, limit, offset), nil
}

// FindByUUID implements Store.
func (s *MemoryStore) FindByUUID(domain, uuid string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]string, 0)
	for key, d := range s.descriptors {
		if key.Domain == domain && d.UUID == uuid {
			matched = append(matched, key.Selector)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// FindByValue implements Store.
func (s *MemoryStore) FindByValue(domain, selectorPrefix, valueRegex string) ([]string, error) {
	re, err := regexp.Compile(valueRegex)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]string, 0)
	for key, d := range s.descriptors {
		if key.Domain != domain || !strings.HasPrefix(key.Selector, selectorPrefix) {
			continue
		}
		if re.Match(d.Value) {
			matched = append(matched, key.Selector)
		}
	}
	sort.Strings(matched)
	return matched, nil
}

// ListUUIDs implements Store.
func (s *MemoryStore) ListUUIDs(domain string) map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uuids := make(map[string]struct{})
	for key, d := range s.descriptors {
		if key.Domain == domain {
			uuids[d.UUID] = struct{}{}
		}
	}
	return uuids
}

func (s *MemoryStore) setMarker(domain, selector, agentName, configFP string, marker descriptor.Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := descriptor.Key{Domain: domain, Selector: selector}
	perAgent, ok := s.markers[key]
	if !ok {
		perAgent = make(map[descriptor.AgentKey]descriptor.Marker)
		s.markers[key] = perAgent
	}

	agentKey := descriptor.AgentKey{Name: agentName, ConfigFP: configFP}
	current := perAgent[agentKey]
	if current.Advances(marker) {
		perAgent[agentKey] = marker
	}
	// conflicting transitions (e.g. processed -> processable) are silently
	// ignored, matching the monotone marker contract.
}

// MarkProcessed implements Store.
func (s *MemoryStore) MarkProcessed(domain, selector, agentName, configFP string) {
	s.setMarker(domain, selector, agentName, configFP, descriptor.Processed)
}

// MarkProcessable implements Store.
func (s *MemoryStore) MarkProcessable(domain, selector, agentName, configFP string) {
	s.setMarker(domain, selector, agentName, configFP, descriptor.Processable)
}

// GetProcessable implements Store.
func (s *MemoryStore) GetProcessable(domain, selector string) []descriptor.AgentKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := descriptor.Key{Domain: domain, Selector: selector}
	result := make([]descriptor.AgentKey, 0)
	for agentKey, marker := range s.markers[key] {
		if marker == descriptor.Processable {
			result = append(result, agentKey)
		}
	}
	return result
}

// ProcessedStats implements Store.
func (s *MemoryStore) ProcessedStats(domain string) map[string]AgentStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]AgentStats)
	for key, perAgent := range s.markers {
		if key.Domain != domain {
			continue
		}
		for agentKey, marker := range perAgent {
			entry := stats[agentKey.Name]
			switch marker {
			case descriptor.Processed:
				entry.Processed++
			case descriptor.Processable:
				entry.Processable++
			}
			stats[agentKey.Name] = entry
		}
	}
	return stats
}

// GetChildren implements Store.
func (s *MemoryStore) GetChildren(domain, selector string, recurse bool) []*descriptor.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	result := make([]*descriptor.Descriptor, 0)

	var visit func(sel string)
	visit = func(sel string) {
		for _, childSel := range s.precursorIndex[domain][sel] {
			if _, done := seen[childSel]; done {
				continue
			}
			seen[childSel] = struct{}{}
			if child, ok := s.descriptors[descriptor.Key{Domain: domain, Selector: childSel}]; ok {
				result = append(result, child)
			}
			if recurse {
				visit(childSel)
			}
		}
	}
	visit(selector)

	sort.Slice(result, func(i, j int) bool { return result[i].Selector < result[j].Selector })
	return result
}

// SupportsAgentState implements Store. MemoryStore always supports it,
// backed by whichever AgentStateBackend it was constructed with; the
// in-process default does not survive a restart, but the interface
// contract (advertise the capability, persist opaque bytes) is honored.
func (s *MemoryStore) SupportsAgentState() bool {
	return s.agentState != nil
}

// StoreAgentState implements Store.
func (s *MemoryStore) StoreAgentState(agentName string, data []byte) error {
	return s.agentState.Store(agentName, data)
}

// LoadAgentState implements Store.
func (s *MemoryStore) LoadAgentState(agentName string) ([]byte, bool, error) {
	return s.agentState.Load(agentName)
}

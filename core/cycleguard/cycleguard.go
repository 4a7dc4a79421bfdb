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

// Package cycleguard implements the Cycle Guard (component F): a stateless
// ancestry check, run before Store insertion, that bounds how deep a
// recursive chain of agents can push descriptors derived from one another.
package cycleguard

import (
	"strings"

	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

// DescriptorGetter is the read-only slice of the Store the guard needs. The
// candidate descriptor is not yet in the store when Accept runs; its
// listed precursors are expected to already be present.
type DescriptorGetter interface {
	GetDescriptor(domain, selector string) (*descriptor.Descriptor, bool)
}

// DefaultMaxMatchingAncestors is the guard's out-of-the-box threshold: a
// lineage may contain at most this many ancestors sharing both the
// candidate's producing agent and its selector shape before a new
// descriptor from that agent is rejected.
const DefaultMaxMatchingAncestors = 2

// Guard evaluates push candidates against the ancestry policy. The zero
// value is not usable; build with New or NewDefault.
type Guard struct {
	maxMatchingAncestors int
}

// New builds a Guard with a caller-chosen threshold.
func New(maxMatchingAncestors int) *Guard {
	return &Guard{maxMatchingAncestors: maxMatchingAncestors}
}

// NewDefault builds a Guard using DefaultMaxMatchingAncestors.
func NewDefault() *Guard {
	return New(DefaultMaxMatchingAncestors)
}

// Accept walks candidate's precursor chain within its own UUID lineage and
// reports whether the push should be allowed. It rejects when:
//   - the chain would close a cycle (some ancestor shares candidate's
//     selector), or
//   - more than maxMatchingAncestors ancestors in the lineage were produced
//     by producerName and share candidate's selector shape.
//
// Selector shape is the selector with its content-addressed suffix (the
// part from the first '%') stripped, so re-derivation at a different
// content hash still counts toward the same lineage slot.
func (g *Guard) Accept(candidate *descriptor.Descriptor, producerName string, store DescriptorGetter) bool {
	shape := selectorShape(candidate.Selector)
	matches := 0
	visited := make(map[string]struct{})
	queue := append([]string(nil), candidate.Precursors...)

	for len(queue) > 0 {
		selector := queue[0]
		queue = queue[1:]

		if selector == candidate.Selector {
			return false
		}
		if _, done := visited[selector]; done {
			continue
		}
		visited[selector] = struct{}{}

		ancestor, ok := store.GetDescriptor(candidate.Domain, selector)
		if !ok || ancestor.UUID != candidate.UUID {
			continue
		}

		if ancestor.HasCredit(producerName) && selectorShape(ancestor.Selector) == shape {
			matches++
			if matches > g.maxMatchingAncestors {
				return false
			}
		}

		queue = append(queue, ancestor.Precursors...)
	}

	return true
}

func selectorShape(selector string) string {
	if idx := strings.IndexByte(selector, '%'); idx >= 0 {
		return selector[:idx]
	}
	return selector
}

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

package echo

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-pro-jma/rebus/observability/logging"
	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

// fakeBus is a minimal agentrt.BusClient double: just enough store-like
// behavior to exercise the echo agent's reactive path.
type fakeBus struct {
	mu          sync.Mutex
	descriptors map[descriptor.Key]*descriptor.Descriptor
	processed   []descriptor.Key
}

func newFakeBus() *fakeBus {
	return &fakeBus{descriptors: make(map[descriptor.Key]*descriptor.Descriptor)}
}

func (f *fakeBus) put(d *descriptor.Descriptor) {
	f.descriptors[d.Key()] = d
}

func (f *fakeBus) Push(string, *descriptor.Descriptor) bool { return false }

func (f *fakeBus) Get(domain, selector string) (*descriptor.Descriptor, bool) {
	d, ok := f.descriptors[descriptor.Key{Domain: domain, Selector: selector}]
	return d, ok
}

func (f *fakeBus) GetValue(domain, selector string) ([]byte, bool) {
	d, ok := f.Get(domain, selector)
	if !ok {
		return nil, false
	}
	return d.Value, true
}

func (f *fakeBus) MarkProcessed(_, domain, selector string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, descriptor.Key{Domain: domain, Selector: selector})
}

func (f *fakeBus) MarkProcessable(string, string, string) {}

func (f *fakeBus) GetProcessable(string, string) []descriptor.AgentKey { return nil }

func (f *fakeBus) Lock(string, string, string, string) bool { return true }

func (f *fakeBus) Unlock(string, string, string, string, bool, int, time.Duration) {}

func (f *fakeBus) RequestProcessing(string, string, string, map[string]struct{}) int { return 0 }

func (f *fakeBus) StoreInternalState(string, []byte) error { return nil }

func (f *fakeBus) LoadInternalState(string) ([]byte, bool, error) { return nil, false, nil }

func noopLogger() logging.Logger {
	return logging.NewStructuredLoggerWithOutput(logging.LevelFatal, io.Discard)
}

func TestEcho_ProcessesMatchingSelector(t *testing.T) {
	bus := newFakeBus()
	d := descriptor.NewDescriptor("bin", "/raw/%AAAA", "u1", "hello", []byte("payload"), nil)
	bus.put(d)

	var buf bytes.Buffer
	a, err := New(Config{Domain: "bin", Patterns: []string{"^/raw/"}}, bus, &buf, noopLogger())
	require.NoError(t, err)
	a.SetAgentID("echo-0")

	require.NoError(t, a.OnNewDescriptor("producer-0", "bin", "u1", "/raw/%AAAA", 0))

	out := buf.String()
	assert.True(t, strings.Contains(out, "selector = /raw/%AAAA"))
	assert.True(t, strings.Contains(out, "payload"))
	assert.Equal(t, []descriptor.Key{{Domain: "bin", Selector: "/raw/%AAAA"}}, bus.processed)
}

func TestEcho_RawModeOmitsMetadata(t *testing.T) {
	bus := newFakeBus()
	d := descriptor.NewDescriptor("bin", "/raw/%AAAA", "u1", "hello", []byte("payload"), nil)
	bus.put(d)

	var buf bytes.Buffer
	a, err := New(Config{Domain: "bin", Patterns: []string{"^/raw/"}, Raw: true}, bus, &buf, noopLogger())
	require.NoError(t, err)
	a.SetAgentID("echo-0")

	require.NoError(t, a.OnNewDescriptor("producer-0", "bin", "u1", "/raw/%AAAA", 0))
	assert.False(t, strings.Contains(buf.String(), "selector ="))
}

func TestEcho_IgnoresNonMatchingSelector(t *testing.T) {
	bus := newFakeBus()
	d := descriptor.NewDescriptor("bin", "/other/%AAAA", "u1", "", []byte("x"), nil)
	bus.put(d)

	var buf bytes.Buffer
	a, err := New(Config{Domain: "bin", Patterns: []string{"^/raw/"}}, bus, &buf, noopLogger())
	require.NoError(t, err)
	a.SetAgentID("echo-0")

	require.NoError(t, a.OnNewDescriptor("producer-0", "bin", "u1", "/other/%AAAA", 0))
	assert.Empty(t, buf.String())
}

func TestEcho_InvalidPatternReturnsError(t *testing.T) {
	_, err := New(Config{Domain: "bin", Patterns: []string{"("}}, newFakeBus(), io.Discard, noopLogger())
	assert.Error(t, err)
}

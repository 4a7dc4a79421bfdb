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

// Package echo implements a minimal demo agent that prints descriptors
// whose selector matches one of its configured regexes, grounded on the
// original "return" agent.
package echo

import (
	"fmt"
	"io"
	"regexp"

	"github.com/dev-pro-jma/rebus/core/agentrt"
	"github.com/dev-pro-jma/rebus/observability/logging"
	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

// Agent is the "echo" demo agent: reactive, no slots, no persisted state.
type Agent struct {
	*agentrt.Runtime

	patterns []*regexp.Regexp
	raw      bool
	out      io.Writer
}

// Config parameterizes an echo Agent.
type Config struct {
	Domain   string
	Mode     agentrt.Mode
	Patterns []string // regexes matched against the selector
	Raw      bool     // true: print only the value; false: print selector/label/uuid too
}

// New builds an echo Agent and its underlying Runtime.
func New(cfg Config, client agentrt.BusClient, out io.Writer, logger logging.Logger) (*Agent, error) {
	compiled := make([]*regexp.Regexp, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("echo: invalid selector pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}

	mode := cfg.Mode
	if mode == "" {
		mode = agentrt.ModeAutomatic
	}

	a := &Agent{patterns: compiled, raw: cfg.Raw, out: out}

	a.Runtime = agentrt.New(agentrt.Config{
		Name:   "echo",
		Mode:   mode,
		Domain: cfg.Domain,
		FullConfig: map[string]interface{}{
			"patterns": cfg.Patterns,
			"raw":      cfg.Raw,
		},
	}, a, client, logger)

	return a, nil
}

// SelectorFilter implements agentrt.Hooks.
func (a *Agent) SelectorFilter(selector string) (string, bool) {
	for _, re := range a.patterns {
		if re.MatchString(selector) {
			return "", true
		}
	}
	return "", false
}

// DescriptorFilter implements agentrt.Hooks: echo processes everything it
// declared interest in.
func (a *Agent) DescriptorFilter(*descriptor.Descriptor, map[string]*descriptor.Descriptor) bool {
	return true
}

// Process implements agentrt.Hooks.
func (a *Agent) Process(target *descriptor.Descriptor, _ string, _ map[string]*descriptor.Descriptor) error {
	if !a.raw {
		fmt.Fprintln(a.out, "---------------------------")
		fmt.Fprintf(a.out, "selector = %s\n", target.Selector)
		fmt.Fprintf(a.out, "label = %s\n", target.Label)
		fmt.Fprintf(a.out, "uuid = %s\n", target.UUID)
	}
	fmt.Fprintln(a.out, string(target.Value))
	return nil
}

// SaveState implements agentrt.Hooks: echo is stateless.
func (a *Agent) SaveState() ([]byte, error) { return nil, nil }

// RestoreState implements agentrt.Hooks.
func (a *Agent) RestoreState([]byte) error { return nil }

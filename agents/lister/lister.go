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

// Package lister implements a minimal demo agent that lists every selector
// in its domain matching a set of regexes, once, to an io.Writer. It never
// reacts to notifications; it exists to exercise Join/Run/Find end-to-end.
package lister

import (
	"context"
	"fmt"
	"io"

	"github.com/dev-pro-jma/rebus/core/agentrt"
	"github.com/dev-pro-jma/rebus/observability/logging"
	"github.com/dev-pro-jma/rebus/pkg/descriptor"
)

// Finder is the slice of the bus the lister needs.
type Finder interface {
	Find(domain, selectorRegex string, limit, offset int) ([]string, error)
}

// Agent is the "ls" demo agent: Non-reactive, Runner-only.
type Agent struct {
	*agentrt.Runtime

	finder    Finder
	domain    string
	selectors []string
	limit     int
	out       io.Writer
	logger    logging.Logger
}

// Config parameterizes a lister Agent.
type Config struct {
	Domain    string
	Selectors []string // regexes; empty string matches everything
	Limit     int
}

// New builds a lister Agent and its underlying Runtime. Join the returned
// Runtime to a bus, call SetAgentID, then Run it (directly or via
// bus.RunAgents).
func New(cfg Config, finder Finder, client agentrt.BusClient, out io.Writer, logger logging.Logger) *Agent {
	if len(cfg.Selectors) == 0 {
		cfg.Selectors = []string{""}
	}

	a := &Agent{
		finder:    finder,
		domain:    cfg.Domain,
		selectors: cfg.Selectors,
		limit:     cfg.Limit,
		out:       out,
		logger:    logger,
	}

	a.Runtime = agentrt.New(agentrt.Config{
		Name:   "ls",
		Mode:   agentrt.ModeAutomatic,
		Domain: cfg.Domain,
		FullConfig: map[string]interface{}{
			"selectors": cfg.Selectors,
			"limit":     cfg.Limit,
		},
	}, a, client, logger)

	return a
}

// Run implements bus.Runner: it lists matching selectors once and returns.
// A real deployment would normally re-run this as a CLI one-shot rather
// than joining it to a long-lived bus, but implementing Run lets it
// exercise RunAgents in tests the same way a long-lived agent would.
func (a *Agent) Run(ctx context.Context) error {
	seen := make(map[string]struct{})
	for _, regex := range a.selectors {
		sels, err := a.finder.Find(a.domain, regex, a.limit, 0)
		if err != nil {
			return err
		}
		if len(sels) == 0 {
			a.logger.Warn(ctx, "selector not found", logging.String("domain", a.domain), logging.String("regex", regex))
			continue
		}
		for _, s := range sels {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			fmt.Fprintln(a.out, s)
		}
	}
	return nil
}

// SelectorFilter implements agentrt.Hooks: the lister never reacts to
// notifications, only to its own Run pass.
func (a *Agent) SelectorFilter(string) (string, bool) { return "", false }

// DescriptorFilter implements agentrt.Hooks.
func (a *Agent) DescriptorFilter(*descriptor.Descriptor, map[string]*descriptor.Descriptor) bool {
	return false
}

// Process implements agentrt.Hooks. Never called: SelectorFilter always
// declines interest.
func (a *Agent) Process(*descriptor.Descriptor, string, map[string]*descriptor.Descriptor) error {
	return nil
}

// SaveState implements agentrt.Hooks: the lister is stateless.
func (a *Agent) SaveState() ([]byte, error) { return nil, nil }

// RestoreState implements agentrt.Hooks.
func (a *Agent) RestoreState([]byte) error { return nil }

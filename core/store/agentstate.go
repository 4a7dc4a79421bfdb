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
	"context"
	"encoding/base64"

	"github.com/dev-pro-jma/rebus/pkg/errors"
)

// agentStateNamespace is where agent-state blobs live within a
// storage.Storage, keyed by agent name.
const agentStateNamespace = "agent-state"

// backingStorage is the subset of storage.Storage that durable
// AgentStateBackend implementations need. Declared locally, the way
// core/agentrt declares its own BusClient, so this package never imports
// the storage package and stays usable without pulling in Redis/Postgres
// drivers.
type backingStorage interface {
	Store(ctx context.Context, namespace, key string, value interface{}) error
	Get(ctx context.Context, namespace, key string) (interface{}, error)
}

// DurableAgentState adapts a storage.Storage (memory, Redis, or Postgres)
// into an AgentStateBackend, so agent internal state survives bus restarts
// whenever the deployment picks a durable storage backend.
type DurableAgentState struct {
	backend backingStorage
	ctx     context.Context
}

// NewDurableAgentState wraps backend for use as a MemoryStore's
// AgentStateBackend via WithAgentStateBackend.
func NewDurableAgentState(backend backingStorage) *DurableAgentState {
	return &DurableAgentState{backend: backend, ctx: context.Background()}
}

// Store implements AgentStateBackend.
func (d *DurableAgentState) Store(agentName string, data []byte) error {
	if err := d.backend.Store(d.ctx, agentStateNamespace, agentName, data); err != nil {
		return errors.ErrInternal.WithMessage("failed to persist agent state").Wrap(err)
	}
	return nil
}

// Load implements AgentStateBackend.
func (d *DurableAgentState) Load(agentName string) ([]byte, bool, error) {
	v, err := d.backend.Get(d.ctx, agentStateNamespace, agentName)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.ErrInternal.WithMessage("failed to load agent state").Wrap(err)
	}

	switch data := v.(type) {
	case []byte:
		return data, true, nil
	case string:
		// JSON-backed storage (Redis, Postgres) hands a stored []byte back
		// as its base64 string.
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, false, errors.ErrInternal.WithMessage("agent state value is not valid base64").Wrap(err)
		}
		return decoded, true, nil
	}
	return nil, false, errors.ErrInternal.WithMessage("agent state value is not a byte slice")
}

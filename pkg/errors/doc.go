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

// Package errors provides structured error handling for the bus, store, and
// agent runtime.
//
// # Error Categories
//
//   - Validation: malformed input to a public operation
//   - Duplicate: a descriptor that already existed in the store
//   - NotFound: a missing descriptor, state blob, or agent
//   - Lock: lock table contention
//   - Cycle: cycle guard rejection
//   - Storage: persisted agent-state backend failures
//   - Agent: errors raised from agent-side hooks
//   - Config: configuration loading/validation failures
//   - Internal: everything else, including fatal worker startup failures
//
// # Creating Errors
//
//	err := errors.ErrLockHeld.WithDetail("selector", sel)
//
// # Wrapping Errors
//
//	if err := store.Add(d); err != nil {
//	    return errors.Wrap(err, "push failed")
//	}
//
// # Error Checking
//
//	if errors.IsDuplicate(err) {
//	    // not an error condition per spec
//	}
package errors

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

package errors

// Agent runtime errors
var (
	// ErrProcessFailed wraps a panic or error raised from an agent's Process
	// hook. The runtime catches it and triggers a failed Unlock.
	ErrProcessFailed = &Error{
		Category: CategoryAgent,
		Code:     "PROCESS_FAILED",
		Message:  "agent process hook failed",
	}

	// ErrUnknownAgent indicates a targeted agent name has not joined the bus.
	ErrUnknownAgent = &Error{
		Category: CategoryAgent,
		Code:     "UNKNOWN_AGENT",
		Message:  "agent is not registered on the bus",
	}
)

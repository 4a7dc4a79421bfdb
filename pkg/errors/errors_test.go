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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	e := New(CategoryLock, "LOCK_HELD", "lock already held")
	assert.Equal(t, "[lock] LOCK_HELD: lock already held", e.Error())

	wrapped := e.Wrap(errors.New("boom"))
	assert.Equal(t, "[lock] LOCK_HELD: lock already held: boom", wrapped.Error())
}

func TestError_WithDetailDoesNotMutateOriginal(t *testing.T) {
	base := ErrLockHeld
	derived := base.WithDetail("selector", "/raw/%AAAA")

	assert.Nil(t, base.Details)
	require.NotNil(t, derived.Details)
	assert.Equal(t, "/raw/%AAAA", derived.Details["selector"])
}

func TestError_Is(t *testing.T) {
	err := ErrDuplicateDescriptor.WithDetail("domain", "bin")
	assert.True(t, errors.Is(err, ErrDuplicateDescriptor))
	assert.False(t, errors.Is(err, ErrLockHeld))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))

	plain := errors.New("disk full")
	wrapped := Wrap(plain, "persisting state")
	var coreErr *Error
	require.True(t, errors.As(wrapped, &coreErr))
	assert.Equal(t, CategoryInternal, coreErr.Category)

	domainErr := Wrap(ErrNotFound, "loading agent state")
	require.True(t, errors.As(domainErr, &coreErr))
	assert.Equal(t, CategoryNotFound, coreErr.Category)
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsDuplicate(ErrDuplicateDescriptor))
	assert.True(t, IsLockHeld(ErrLockHeld.WithMessage("agent X")))
	assert.True(t, IsCycleRejected(ErrCycleRejected))
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsInvalidInput(ErrInvalidInput))
	assert.False(t, IsDuplicate(ErrLockHeld))
}

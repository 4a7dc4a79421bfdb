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

package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_StableAcrossRuns(t *testing.T) {
	cfg := map[string]interface{}{
		"operationmode": "automatic",
		"threshold":     3,
		"name":          "ls",
	}

	fp1 := Fingerprint(cfg, nil)
	fp2 := Fingerprint(cfg, nil)
	assert.Equal(t, fp1, fp2)
	assert.NotContains(t, fp1, "operationmode")
}

func TestFingerprint_RestrictedToOutputAltering(t *testing.T) {
	cfg := map[string]interface{}{
		"operationmode": "automatic",
		"threshold":     3,
		"verbose":       true,
	}

	fp := Fingerprint(cfg, []string{"threshold"})
	assert.Contains(t, fp, "threshold")
	assert.NotContains(t, fp, "verbose")
	assert.NotContains(t, fp, "operationmode")
}

func TestFingerprint_KeyOrderDoesNotMatter(t *testing.T) {
	a := map[string]interface{}{"b": 1, "a": 2}
	b := map[string]interface{}{"a": 2, "b": 1}
	assert.Equal(t, Fingerprint(a, nil), Fingerprint(b, nil))
}

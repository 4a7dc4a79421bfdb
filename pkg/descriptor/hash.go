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
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ContentHash returns the hex-encoded BLAKE2b-256 digest of value, truncated
// to hashLen bytes of digest (hashLen*2 hex characters). It is the building
// block agents use to derive a selector's content-addressed suffix, e.g.
// "/raw/%" + ContentHash(value, 8).
func ContentHash(value []byte, hashLen int) string {
	sum := blake2b.Sum256(value)
	if hashLen <= 0 || hashLen > len(sum) {
		hashLen = len(sum)
	}
	return hex.EncodeToString(sum[:hashLen])
}

// SelectorHash is a convenience for deriving a selector suffix from
// structured identity fields (e.g. a link's endpoints and type) rather than
// raw content bytes.
func SelectorHash(parts ...string) string {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
		buf = append(buf, 0)
	}
	return ContentHash(buf, 8)
}

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
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"fmt"
)

// EncodeValue serializes obj into an opaque byte slice suitable for a
// Descriptor's Value field, using encoding/gob. It replaces the original
// implementation's pickle-based opaqueness with a Go-native equivalent:
// callers on both ends of the bus must agree on obj's concrete type, the
// same way the original's agents agreed on what they pickled.
func EncodeValue(obj interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(obj); err != nil {
		return nil, fmt.Errorf("descriptor: encode value: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeValue deserializes data produced by EncodeValue into out, which
// must be a pointer to a value of the original's concrete type.
func DecodeValue(data []byte, out interface{}) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(out); err != nil {
		return fmt.Errorf("descriptor: decode value: %w", err)
	}
	return nil
}

// EncodeValueBase64 is EncodeValue followed by base64 encoding, for
// transports (e.g. JSON over HTTP) that cannot carry arbitrary bytes
// safely. Mirrors the original's b64serializer.
func EncodeValueBase64(obj interface{}) (string, error) {
	raw, err := EncodeValue(obj)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeValueBase64 reverses EncodeValueBase64.
func DecodeValueBase64(s string, out interface{}) error {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("descriptor: decode base64 value: %w", err)
	}
	return DecodeValue(raw, out)
}

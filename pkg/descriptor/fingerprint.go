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
	"encoding/json"
	"sort"
)

// Fingerprint computes the stable configuration fingerprint for an agent:
// the JSON encoding of cfg with keys sorted lexicographically, restricted to
// the keys named in outputAltering. A nil outputAltering fingerprints every
// key in cfg except "operationmode", matching the default policy described
// in the coordination contract.
func Fingerprint(cfg map[string]interface{}, outputAltering []string) string {
	keys := outputAltering
	if keys == nil {
		keys = make([]string, 0, len(cfg))
		for k := range cfg {
			if k == "operationmode" {
				continue
			}
			keys = append(keys, k)
		}
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	subset := make(map[string]interface{}, len(sorted))
	for _, k := range sorted {
		if v, ok := cfg[k]; ok {
			subset[k] = v
		}
	}

	// encoding/json already sorts map keys lexicographically when
	// marshaling, which is what gives the fingerprint its run-to-run
	// stability for a fixed configuration.
	b, err := json.Marshal(subset)
	if err != nil {
		// cfg values are expected to be JSON-serializable primitives;
		// a marshal failure here means the agent misconfigured its
		// config map, which we surface as an empty-object fingerprint
		// rather than panicking the dispatch path.
		return "{}"
	}
	return string(b)
}

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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
bus:
  max_matching_ancestors: 3
  selector_hash_len: 12

agents:
  - name: lister
    domain: bin
    mode: automatic
  - name: echo
    domain: bin
    mode: idle
    slots: ["input"]

retry:
  max_retries: 5
  initial_wait: 250ms

storage:
  type: redis
  redis:
    host: cache.internal
    port: 6380

logging:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Bus.MaxMatchingAncestors)
	assert.Equal(t, 12, cfg.Bus.SelectorHashLen)
	require.Len(t, cfg.Agents, 2)
	assert.Equal(t, "lister", cfg.Agents[0].Name)
	assert.Equal(t, []string{"input"}, cfg.Agents[1].Slots)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialWait)
	assert.Equal(t, "redis", cfg.Storage.Type)
	assert.Equal(t, "cache.internal", cfg.Storage.Redis.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, "none", cfg.Transport.Type)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromFile_InvalidConfigFailsValidation(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("storage:\n  type: carrier-pigeon\n"), 0o644))

	_, err := LoadFromFile(configPath)
	assert.Error(t, err)
}

func TestLoadFromFile_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: info\n"), 0o644))

	t.Setenv("REBUS_LOGGING_LEVEL", "warn")

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

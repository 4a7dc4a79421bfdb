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
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadFromFile loads configuration from a file (YAML, JSON, or any other
// format viper recognizes from the extension) and layers REBUS_*
// environment variables on top of it.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

// Load builds a configuration purely from defaults and environment
// variables, for deployments that don't ship a config file.
func Load() (*Config, error) {
	return load(viper.New())
}

// load applies REBUS_<SECTION>_<FIELD> environment variables on top of
// whatever v has already read, decodes into a defaulted Config, and
// validates the result.
func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("REBUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v,
		"bus.max_matching_ancestors", "bus.selector_hash_len",
		"retry.max_retries", "retry.initial_wait",
		"storage.type", "storage.redis.host", "storage.redis.port", "storage.redis.password",
		"storage.postgres.host", "storage.postgres.port", "storage.postgres.user",
		"storage.postgres.password", "storage.postgres.database",
		"logging.level", "logging.format", "logging.output_path",
		"metrics.enabled", "metrics.port",
		"transport.type", "transport.http.port", "transport.grpc.port",
	)

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnv registers each dotted key so viper's automatic env lookup applies
// even to keys that never appear in the config file.
func bindEnv(v *viper.Viper, keys ...string) {
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}

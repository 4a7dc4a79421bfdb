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

// Package config provides configuration management for a rebus deployment.
//
// The configuration system supports multiple sources with the following precedence:
//   1. Environment variables (prefixed with REBUS_)
//   2. Configuration file (YAML or JSON, read via viper)
//   3. Default values
//
// # Configuration Structure
//
// The configuration is organized into sections:
//   - Bus: cycle guard tuning (max matching ancestors, selector hash length)
//   - Agents: the list of agents to join to the bus at startup
//   - Retry: lock table redelivery policy
//   - Storage: descriptor/agent-state backend selection
//   - Logging: logger level, format, and output
//   - Metrics: Prometheus exporter settings
//   - Transport: the optional distributed-bus network surface
//
// # Usage
//
// Loading configuration:
//
//	cfg, err := config.LoadFromFile("config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Environment variable override:
//
//	export REBUS_STORAGE_TYPE="redis"
//	export REBUS_STORAGE_REDIS_HOST="cache.internal"
//	export REBUS_LOGGING_LEVEL="debug"
//
// # Validation
//
// All configuration is validated before use. Validation rules include:
//   - Agent names must be non-empty and unique
//   - Agent mode must be "automatic", "interactive", or "idle"
//   - Storage type must be "memory", "redis", or "postgres"
//   - Transport type must be "none", "http", or "grpc"
//
// See the Config.Validate() method for complete validation rules.
package config

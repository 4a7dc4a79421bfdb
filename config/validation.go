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
)

// Validate validates the entire configuration.
func (c *Config) Validate() error {
	if err := c.validateBus(); err != nil {
		return err
	}

	if err := c.validateAgents(); err != nil {
		return err
	}

	if err := c.validateRetry(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateTransport(); err != nil {
		return err
	}

	return nil
}

// validateBus validates the cycle guard tuning parameters.
func (c *Config) validateBus() error {
	if c.Bus.MaxMatchingAncestors < 0 {
		return fmt.Errorf("bus max_matching_ancestors must not be negative")
	}

	if c.Bus.SelectorHashLen < 1 || c.Bus.SelectorHashLen > 32 {
		return fmt.Errorf("bus selector_hash_len must be between 1 and 32")
	}

	return nil
}

// validateAgents validates every configured agent entry.
func (c *Config) validateAgents() error {
	validModes := map[string]bool{
		"automatic":   true,
		"interactive": true,
		"idle":        true,
		"":            true, // defaults to automatic
	}

	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if a.Name == "" {
			return fmt.Errorf("agent name must not be empty")
		}
		if seen[a.Name] {
			return fmt.Errorf("duplicate agent name: %s", a.Name)
		}
		seen[a.Name] = true

		if !validModes[a.Mode] {
			return fmt.Errorf("agent %s: mode must be one of: automatic, interactive, idle", a.Name)
		}
	}

	return nil
}

// validateRetry validates the retry scheduler configuration.
func (c *Config) validateRetry() error {
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry max_retries must not be negative")
	}

	if c.Retry.InitialWait < 0 {
		return fmt.Errorf("retry initial_wait must not be negative")
	}

	return nil
}

// validateStorage validates storage configuration.
func (c *Config) validateStorage() error {
	validTypes := map[string]bool{
		"memory":   true,
		"redis":    true,
		"postgres": true,
	}

	if !validTypes[c.Storage.Type] {
		return fmt.Errorf("storage type must be one of: memory, redis, postgres")
	}

	if c.Storage.Type == "redis" {
		if err := c.validateRedis(); err != nil {
			return err
		}
	}

	if c.Storage.Type == "postgres" {
		if err := c.validatePostgres(); err != nil {
			return err
		}
	}

	return nil
}

// validateRedis validates Redis configuration.
func (c *Config) validateRedis() error {
	if c.Storage.Redis.Host == "" {
		return fmt.Errorf("redis host must not be empty")
	}

	if c.Storage.Redis.Port < 1 || c.Storage.Redis.Port > 65535 {
		return fmt.Errorf("redis port must be between 1 and 65535")
	}

	return nil
}

// validatePostgres validates PostgreSQL configuration.
func (c *Config) validatePostgres() error {
	if c.Storage.Postgres.Host == "" {
		return fmt.Errorf("postgres host must not be empty")
	}

	if c.Storage.Postgres.Port < 1 || c.Storage.Postgres.Port > 65535 {
		return fmt.Errorf("postgres port must be between 1 and 65535")
	}

	if c.Storage.Postgres.User == "" {
		return fmt.Errorf("postgres user must not be empty")
	}

	if c.Storage.Postgres.Database == "" {
		return fmt.Errorf("postgres database must not be empty")
	}

	return nil
}

// validateTransport validates the optional distributed-bus transport.
func (c *Config) validateTransport() error {
	validTypes := map[string]bool{
		"none": true,
		"http": true,
		"grpc": true,
	}

	if !validTypes[c.Transport.Type] {
		return fmt.Errorf("transport type must be one of: none, http, grpc")
	}

	if c.Transport.Type == "http" && (c.Transport.HTTP.Port < 1 || c.Transport.HTTP.Port > 65535) {
		return fmt.Errorf("transport http port must be between 1 and 65535")
	}

	if c.Transport.Type == "grpc" && (c.Transport.GRPC.Port < 1 || c.Transport.GRPC.Port > 65535) {
		return fmt.Errorf("transport grpc port must be between 1 and 65535")
	}

	return nil
}

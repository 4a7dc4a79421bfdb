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
	"time"
)

// Config represents the complete configuration for a rebus deployment:
// the bus itself, the agents it joins, and the ambient subsystems
// (storage, logging, metrics, transport) they run on top of.
type Config struct {
	Bus       BusConfig             `json:"bus" yaml:"bus"`
	Agents    []AgentConfig         `json:"agents" yaml:"agents"`
	Retry     RetryConfig           `json:"retry" yaml:"retry"`
	Storage   StorageConfig         `json:"storage" yaml:"storage"`
	Logging   LoggingConfig         `json:"logging" yaml:"logging"`
	Metrics   MetricsConfig         `json:"metrics" yaml:"metrics"`
	Transport TransportConfig       `json:"transport" yaml:"transport"`
}

// BusConfig tunes the dispatcher and its cycle guard.
type BusConfig struct {
	MaxMatchingAncestors int `json:"max_matching_ancestors" yaml:"max_matching_ancestors" mapstructure:"max_matching_ancestors"`
	SelectorHashLen      int `json:"selector_hash_len" yaml:"selector_hash_len" mapstructure:"selector_hash_len"`
}

// AgentConfig describes one agent to join to the bus at startup.
type AgentConfig struct {
	Name   string `json:"name" yaml:"name"`
	Domain string `json:"domain" yaml:"domain"`
	Mode   string `json:"mode" yaml:"mode"` // "automatic", "interactive", "idle"
	// Type selects the agent implementation to construct: "lister",
	// "echo", or "enrich". Unknown types are rejected by cmd/rebus serve's
	// registry, not by Validate, which only knows about configuration
	// shape.
	Type               string                 `json:"type" yaml:"type"`
	Slots              []string               `json:"slots" yaml:"slots"`
	Config             map[string]interface{} `json:"config" yaml:"config"`
	OutputAlteringKeys []string               `json:"output_altering_keys" yaml:"output_altering_keys" mapstructure:"output_altering_keys"`
}

// RetryConfig governs the lock table's failed-unlock redelivery policy.
type RetryConfig struct {
	MaxRetries  int           `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
	InitialWait time.Duration `json:"initial_wait" yaml:"initial_wait" mapstructure:"initial_wait"`
}

// StorageConfig selects and configures the descriptor/agent-state backend.
type StorageConfig struct {
	Type     string         `json:"type" yaml:"type"` // "memory", "redis", "postgres"
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// PostgresConfig contains PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	SSLMode  string `json:"ssl_mode" yaml:"ssl_mode" mapstructure:"ssl_mode"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	OutputPath string `json:"output_path" yaml:"output_path" mapstructure:"output_path"`
}

// MetricsConfig contains metrics and monitoring configuration.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port" yaml:"port"`
	Path    string `json:"path" yaml:"path"`
}

// TransportConfig selects the optional distributed-bus network surface.
type TransportConfig struct {
	Type string           `json:"type" yaml:"type"` // "none", "http", "grpc"
	HTTP HTTPTransport    `json:"http" yaml:"http"`
	GRPC GRPCTransport    `json:"grpc" yaml:"grpc"`
}

// HTTPTransport contains the HTTP push/notify server settings.
type HTTPTransport struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// GRPCTransport contains the gRPC push/notify server settings.
type GRPCTransport struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Bus: BusConfig{
			MaxMatchingAncestors: 2,
			SelectorHashLen:      8,
		},
		Retry: RetryConfig{
			MaxRetries:  3,
			InitialWait: 500 * time.Millisecond,
		},
		Storage: StorageConfig{
			Type: "memory",
			Redis: RedisConfig{
				Host: "localhost",
				Port: 6379,
				DB:   0,
			},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		Transport: TransportConfig{
			Type: "none",
			HTTP: HTTPTransport{Host: "0.0.0.0", Port: 8080},
			GRPC: GRPCTransport{Host: "0.0.0.0", Port: 9091},
		},
	}
}

// NewConfig creates a new default configuration.
// This is an alias for DefaultConfig().
func NewConfig() *Config {
	return DefaultConfig()
}

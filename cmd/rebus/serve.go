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

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dev-pro-jma/rebus/agents/echo"
	"github.com/dev-pro-jma/rebus/agents/enrich"
	"github.com/dev-pro-jma/rebus/agents/lister"
	"github.com/dev-pro-jma/rebus/config"
	"github.com/dev-pro-jma/rebus/core/agentrt"
	"github.com/dev-pro-jma/rebus/core/bus"
	"github.com/dev-pro-jma/rebus/core/cycleguard"
	"github.com/dev-pro-jma/rebus/core/store"
	"github.com/dev-pro-jma/rebus/observability"
	"github.com/dev-pro-jma/rebus/observability/logging"
	"github.com/dev-pro-jma/rebus/observability/metrics"
	"github.com/dev-pro-jma/rebus/storage"
	transporthttp "github.com/dev-pro-jma/rebus/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Join the configured agents to a bus and run them",
	Long: `serve constructs the Descriptor Store, Cycle Guard and Bus
Dispatcher from configuration, joins every configured agent, and runs them
until every agent's Run loop has returned and an idle pass finds no more
work. Agents without a Run loop do not keep serve running. SIGINT/SIGTERM
cancels the context passed to the Run loops.

Configuration can be provided via:
  - config.yaml file (default: ./config.yaml)
  - REBUS_* environment variables

Example:
  rebus serve
  rebus serve --config my-config.yaml`,
	RunE: runServe,
}

var serveConfigPath string

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "config.yaml", "Path to configuration file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg)

	obsManager, err := newObservabilityManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer obsManager.Shutdown(context.Background())

	st, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	guard := cycleguard.New(cfg.Bus.MaxMatchingAncestors)
	b := bus.New(st, guard, logger)
	defer b.Shutdown()

	if err := joinAgents(b, cfg, logger, obsManager.LLMMetrics()); err != nil {
		return fmt.Errorf("failed to join agents: %w", err)
	}

	if cfg.Metrics.Enabled {
		addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
		obsSrv := &http.Server{Addr: addr, Handler: obsManager.HTTPHandler()}
		go func() {
			log.Printf("observability endpoints (metrics, health) listening on %s", addr)
			if err := obsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("observability server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = obsSrv.Shutdown(shutdownCtx)
		}()
	}
	obsManager.MarkReady()

	switch cfg.Transport.Type {
	case "", "none", "http":
	case "grpc":
		return fmt.Errorf("transport type %q is configured but not yet implemented", cfg.Transport.Type)
	default:
		return fmt.Errorf("unsupported transport type %q", cfg.Transport.Type)
	}

	if cfg.Transport.Type == "http" {
		srv := transporthttp.NewServer(b, logger, []string{"*"})
		srv.Join("")
		addr := fmt.Sprintf("%s:%d", cfg.Transport.HTTP.Host, cfg.Transport.HTTP.Port)
		httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}
		go func() {
			log.Printf("http transport listening on %s", addr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http transport error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("shutdown signal received, stopping bus...")
		cancel()
	}()

	if err := b.RunAgents(ctx); err != nil {
		return fmt.Errorf("agent run failed: %w", err)
	}

	log.Println("all agents finished")
	return nil
}

// loadConfig loads configuration from path, falling back to defaults if the
// file does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("config file not found: %s, using defaults", path)
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	log.Printf("configuration loaded from %s", path)
	return cfg, nil
}

// newLogger builds the configured Logger implementation. "zap" selects the
// go.uber.org/zap-backed logger; anything else falls back to the
// dependency-free structured logger.
func newLogger(cfg *config.Config) logging.Logger {
	level := logging.Level(cfg.Logging.Level)
	if cfg.Logging.Format == "zap" {
		return logging.NewZapLogger(level)
	}
	return logging.NewStructuredLogger(level)
}

// newObservabilityManager builds the Manager bundling the Prometheus
// collector, agent/LLM metrics, and liveness/readiness/startup health
// checkers behind one HTTP handler. It has its own internal logger purely to
// satisfy observability.Config.Validate(); the real logger used for all log
// output remains the one newLogger builds, since observability's own
// LoggingConfig cannot express the "zap" format.
func newObservabilityManager(cfg *config.Config) (*observability.Manager, error) {
	obsCfg := observability.DefaultConfig()
	obsCfg.Metrics.Enabled = cfg.Metrics.Enabled
	if cfg.Metrics.Port > 0 {
		obsCfg.Metrics.Port = cfg.Metrics.Port
	}
	if cfg.Metrics.Path != "" {
		obsCfg.Metrics.Path = cfg.Metrics.Path
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error", "fatal":
		obsCfg.Logging.Level = cfg.Logging.Level
	}
	obsCfg.Logging.Format = "json"
	obsCfg.Tracing.Enabled = false
	obsCfg.Health.Enabled = true
	if cfg.Metrics.Port > 0 {
		obsCfg.Health.Port = cfg.Metrics.Port
	}

	return observability.NewManager(&observability.ManagerConfig{
		AgentID: "rebus",
		Config:  obsCfg,
	})
}

// newStore builds the Descriptor Store, wiring a durable agent-state
// backend when a non-memory storage backend is configured.
func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Type {
	case "", "memory":
		log.Println("storage: memory")
		return store.NewMemoryStore(), nil

	case "redis":
		redisConfig := storage.DefaultRedisConfig()
		if cfg.Storage.Redis.Host != "" {
			redisConfig.Address = fmt.Sprintf("%s:%d", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port)
		}
		redisConfig.Password = cfg.Storage.Redis.Password
		redisConfig.DB = cfg.Storage.Redis.DB

		backend, err := storage.NewRedisStorage(redisConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis storage: %w", err)
		}
		log.Printf("storage: redis (%s)", redisConfig.Address)
		return store.NewMemoryStore(store.WithAgentStateBackend(store.NewDurableAgentState(backend))), nil

	case "postgres":
		pgConfig := storage.DefaultPostgresConfig()
		if cfg.Storage.Postgres.Host != "" {
			pgConfig.Host = cfg.Storage.Postgres.Host
		}
		if cfg.Storage.Postgres.Port > 0 {
			pgConfig.Port = cfg.Storage.Postgres.Port
		}
		pgConfig.User = cfg.Storage.Postgres.User
		pgConfig.Password = cfg.Storage.Postgres.Password
		pgConfig.Database = cfg.Storage.Postgres.Database
		if cfg.Storage.Postgres.SSLMode != "" {
			pgConfig.SSLMode = cfg.Storage.Postgres.SSLMode
		}

		backend, err := storage.NewPostgresStorage(pgConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres storage: %w", err)
		}
		log.Printf("storage: postgres (%s:%d/%s)", pgConfig.Host, pgConfig.Port, pgConfig.Database)
		return store.NewMemoryStore(store.WithAgentStateBackend(store.NewDurableAgentState(backend))), nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}

// joinAgents constructs and joins every configured agent. Unknown agent
// types are a configuration error: there is no silent skip.
func joinAgents(b *bus.Bus, cfg *config.Config, logger logging.Logger, llmMetrics *metrics.LLMMetrics) error {
	for _, a := range cfg.Agents {
		agent, err := buildAgent(a, b, logger, llmMetrics)
		if err != nil {
			return fmt.Errorf("agent %s: %w", a.Name, err)
		}

		id := b.Join(agent, a.Domain)
		agent.SetAgentID(id)
		log.Printf("joined agent %q (type=%s, id=%s)", a.Name, a.Type, id)
	}
	return nil
}

// runtimeAgent is the common surface every demo agent exposes beyond
// bus.Agent: the embedded *agentrt.Runtime's SetAgentID.
type runtimeAgent interface {
	bus.Agent
	SetAgentID(id string)
}

func buildAgent(a config.AgentConfig, client agentrt.BusClient, logger logging.Logger, llmMetrics *metrics.LLMMetrics) (runtimeAgent, error) {
	switch a.Type {
	case "lister":
		selectors := stringSlice(a.Config, "selectors")
		limit := intValue(a.Config, "limit", 0)
		return lister.New(lister.Config{
			Domain:    a.Domain,
			Selectors: selectors,
			Limit:     limit,
		}, client.(lister.Finder), client, os.Stdout, logger), nil

	case "echo":
		mode := agentrt.Mode(a.Mode)
		if mode == "" {
			mode = agentrt.ModeAutomatic
		}
		return echo.New(echo.Config{
			Domain:   a.Domain,
			Mode:     mode,
			Patterns: stringSlice(a.Config, "patterns"),
			Raw:      boolValue(a.Config, "raw", false),
		}, client, os.Stdout, logger)

	case "enrich":
		provider, err := buildProvider(a.Config)
		if err != nil {
			return nil, err
		}
		return enrich.New(enrich.Config{
			Domain:            a.Domain,
			BodyPattern:       stringValue(a.Config, "body_pattern", ""),
			PromptPrefix:      stringValue(a.Config, "prompt_prefix", ""),
			MaxCallsPerSecond: floatValue(a.Config, "max_calls_per_second", 0),
			BurstCapacity:     intValue(a.Config, "burst_capacity", 0),
			Metrics:           llmMetrics,
		}, provider, client, logger)

	default:
		return nil, fmt.Errorf("unknown agent type %q", a.Type)
	}
}

func buildProvider(cfg map[string]interface{}) (enrich.Provider, error) {
	switch stringValue(cfg, "provider", "openai") {
	case "anthropic":
		return enrich.NewAnthropicProvider(enrich.AnthropicConfig{
			APIKey: stringValue(cfg, "api_key", ""),
			Model:  stringValue(cfg, "model", ""),
		}), nil
	case "openai":
		return enrich.NewOpenAIProvider(enrich.OpenAIConfig{
			APIKey: stringValue(cfg, "api_key", ""),
			Model:  stringValue(cfg, "model", ""),
		}), nil
	default:
		return nil, fmt.Errorf("unknown enrich provider %q", stringValue(cfg, "provider", ""))
	}
}

func stringValue(cfg map[string]interface{}, key, def string) string {
	if v, ok := cfg[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func boolValue(cfg map[string]interface{}, key string, def bool) bool {
	if v, ok := cfg[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func floatValue(cfg map[string]interface{}, key string, def float64) float64 {
	switch v := cfg[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return def
	}
}

func intValue(cfg map[string]interface{}, key string, def int) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

func stringSlice(cfg map[string]interface{}, key string) []string {
	v, ok := cfg[key]
	if !ok {
		return nil
	}
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

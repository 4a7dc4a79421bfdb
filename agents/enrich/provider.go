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

// Package enrich implements a demo agent that asks an LLM to summarize a
// descriptor's value and pushes the summary back onto the bus. It is the
// one agent in the tree that exercises the LLM domain dependencies; two
// Provider implementations are offered (OpenAI, Anthropic) and selected by
// configuration, mirroring the multi-provider shape of the original
// sage-adk llm adapters without depending on that deleted package.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"os"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

// Provider generates a short completion for a prompt. Both concrete
// implementations below are thin, synchronous wrappers; streaming is not
// needed for a one-shot summarization agent.
type Provider interface {
	Name() string
	Model() string
	Summarize(ctx context.Context, prompt string) (string, error)
}

// OpenAIConfig configures the OpenAI-backed provider.
type OpenAIConfig struct {
	APIKey string // falls back to OPENAI_API_KEY
	Model  string // falls back to "gpt-4o-mini"
}

type openAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a Provider backed by the OpenAI chat completion
// API.
func NewOpenAIProvider(cfg OpenAIConfig) Provider {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &openAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *openAIProvider) Name() string { return "openai" }

func (p *openAIProvider) Model() string { return p.model }

func (p *openAIProvider) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("enrich: openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("enrich: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// AnthropicConfig configures the Anthropic-backed provider.
type AnthropicConfig struct {
	APIKey string // falls back to ANTHROPIC_API_KEY
	Model  string // falls back to anthropic.ModelClaude3_5HaikuLatest
}

type anthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewAnthropicProvider builds a Provider backed by the Anthropic messages
// API.
func NewAnthropicProvider(cfg AnthropicConfig) Provider {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaude3_5HaikuLatest
	}

	client := anthropic.NewClient(opts...)
	return &anthropicProvider{
		client: &client,
		model:  model,
	}
}

func (p *anthropicProvider) Name() string { return "anthropic" }

func (p *anthropicProvider) Model() string { return string(p.model) }

func (p *anthropicProvider) Summarize(ctx context.Context, prompt string) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(p.model),
		MaxTokens: anthropic.F(int64(256)),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("enrich: anthropic completion: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", errors.New("enrich: anthropic returned no content blocks")
	}
	return msg.Content[0].Text, nil
}

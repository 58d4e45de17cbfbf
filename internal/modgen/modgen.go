/*
Copyright 2026 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package modgen turns a list of prompt modules into a structured result: it renders the
// prompt, asks the completion service for a reply and recovers the JSON object from it.
package modgen

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/llm-d-incubation/modgen/internal/config"
	"github.com/llm-d-incubation/modgen/internal/inference"
	"github.com/llm-d-incubation/modgen/internal/metrics"
	"github.com/llm-d-incubation/modgen/internal/parser"
	"github.com/llm-d-incubation/modgen/internal/prompt"
	"github.com/llm-d-incubation/modgen/internal/util/logging"
)

// Completer sends a single-turn prompt and returns the reply text.
// *inference.HTTPClient satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string, model string, temperature float64) (string, error)
}

type Generator struct {
	client      Completer
	model       string
	temperature float64
}

type Option func(*Generator)

// WithModel sets the model sent with every Generate call. Empty keeps the client's default.
func WithModel(model string) Option {
	return func(g *Generator) {
		g.model = model
	}
}

func WithTemperature(temperature float64) Option {
	return func(g *Generator) {
		g.temperature = temperature
	}
}

func NewGenerator(client Completer, opts ...Option) *Generator {
	g := &Generator{
		client:      client,
		model:       inference.DefaultModel,
		temperature: inference.DefaultTemperature,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGeneratorFromConfig validates cfg and builds a Generator backed by an HTTP completion client.
func NewGeneratorFromConfig(cfg *config.Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	httpConfig, err := cfg.HTTPClientConfig()
	if err != nil {
		return nil, err
	}
	client, err := inference.NewHTTPClient(httpConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}
	return NewGenerator(client, WithModel(cfg.Model), WithTemperature(cfg.Temperature)), nil
}

// Generate renders modules into a prompt, fills the placeholders, sends it and parses the reply.
//
// When targetKeys is nil the lower-cased names of the named modules are used, so the result
// carries exactly the fields requested in the output format. Completion errors are returned
// as produced by the client. An empty reply yields an empty map without parsing.
func (g *Generator) Generate(ctx context.Context, modules []prompt.Module, placeholders map[string]any, targetKeys []string) (map[string]any, error) {
	logger := klog.FromContext(ctx)

	text := prompt.Build(modules, placeholders)
	logger.V(logging.TRACE).Info("Built prompt", "modules", len(modules), "prompt", text)

	response, err := g.client.Complete(ctx, text, g.model, g.temperature)
	if err != nil {
		return nil, err
	}

	if response == "" {
		logger.Info("Received an empty response, returning an empty result", "model", g.model)
		metrics.RecordEmptyResponse()
		return map[string]any{}, nil
	}

	if targetKeys == nil {
		targetKeys = prompt.FieldNames(modules)
	}
	return parser.ParseJSON(ctx, response, targetKeys), nil
}

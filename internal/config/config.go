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

// The completion client configuration definitions.

package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/llm-d-incubation/modgen/internal/inference"
	utls "github.com/llm-d-incubation/modgen/internal/util/tls"
)

const DefaultEnvFile = ".env"

type Config struct {
	BaseURL         string        `json:"base_url" yaml:"base_url" env:"MODGEN_BASE_URL"`
	Model           string        `json:"model" yaml:"model" env:"MODGEN_MODEL"`
	Temperature     float64       `json:"temperature" yaml:"temperature" env:"MODGEN_TEMPERATURE"`
	MaxTokens       int           `json:"max_tokens" yaml:"max_tokens" env:"MODGEN_MAX_TOKENS"`
	Timeout         time.Duration `json:"timeout" yaml:"timeout" env:"MODGEN_TIMEOUT"`
	MaxIdleConns    int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	IdleConnTimeout time.Duration `json:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	TLS             TLSConfig     `json:"tls" yaml:"tls" envPrefix:"MODGEN_TLS_"`

	// APIKey is only ever read from the environment (or a .env file), never from YAML.
	APIKey string `json:"-" yaml:"-" env:"OPENAI_API_KEY"`
}

type TLSConfig struct {
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify" env:"INSECURE_SKIP_VERIFY"`
	Certificates       utls.Certificates `json:"certificates" yaml:"certificates"`
	MinVersion         string            `json:"min_version" yaml:"min_version" env:"MIN_VERSION"` // "1.2" or "1.3"
}

// NewConfig returns a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:         inference.DefaultBaseURL,
		Model:           inference.DefaultModel,
		Temperature:     inference.DefaultTemperature,
		MaxTokens:       inference.DefaultMaxTokens,
		Timeout:         5 * time.Minute,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
}

// LoadFromYAML loads the configuration from a YAML file.
func (c *Config) LoadFromYAML(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", filePath, err)
	}
	return nil
}

// LoadFromEnv loads the given .env files (DefaultEnvFile when none is given) and then
// overlays the process environment. Missing .env files are skipped and variables already
// set in the environment win over .env entries.
func (c *Config) LoadFromEnv(envFiles ...string) error {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}

	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate checks the values that would otherwise only fail on the first request.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must not be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("model must not be empty")
	}
	if c.Temperature < 0 {
		return fmt.Errorf("temperature must not be negative, got %v", c.Temperature)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if _, err := parseTLSVersion(c.TLS.MinVersion); err != nil {
		return err
	}
	return nil
}

// HTTPClientConfig converts the configuration into the completion client settings.
func (c *Config) HTTPClientConfig() (inference.HTTPClientConfig, error) {
	minVersion, err := parseTLSVersion(c.TLS.MinVersion)
	if err != nil {
		return inference.HTTPClientConfig{}, err
	}
	certs := c.TLS.Certificates
	return inference.HTTPClientConfig{
		BaseURL:               c.BaseURL,
		APIKey:                c.APIKey,
		Model:                 c.Model,
		MaxTokens:             c.MaxTokens,
		Timeout:               c.Timeout,
		MaxIdleConns:          c.MaxIdleConns,
		IdleConnTimeout:       c.IdleConnTimeout,
		TLSInsecureSkipVerify: c.TLS.InsecureSkipVerify,
		TLSCACertFile:         utls.JoinCertPath(certs.Dir, certs.CaCertFile),
		TLSClientCertFile:     utls.JoinCertPath(certs.Dir, certs.CertFile),
		TLSClientKeyFile:      utls.JoinCertPath(certs.Dir, certs.KeyFile),
		TLSMinVersion:         minVersion,
	}, nil
}

func parseTLSVersion(v string) (uint16, error) {
	switch v {
	case "":
		return 0, nil
	case "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported tls min_version %q", v)
	}
}

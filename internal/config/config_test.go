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

package config

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/llm-d-incubation/modgen/internal/inference"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// unsetEnv clears key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, inference.DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, 1.0, cfg.Temperature)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Empty(t, cfg.APIKey)
	assert.Nil(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	t.Run("should override defaults with file values", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
base_url: http://localhost:8000/v1
model: gpt-4o-mini
temperature: 0.2
max_tokens: 256
timeout: 30s
tls:
  insecure_skip_verify: true
  min_version: "1.3"
  certificates:
    dir: /etc/certs
    ca_cert_file: ca.pem
`)
		cfg := NewConfig()
		assert.Nil(t, cfg.LoadFromYAML(path))

		assert.Equal(t, "http://localhost:8000/v1", cfg.BaseURL)
		assert.Equal(t, "gpt-4o-mini", cfg.Model)
		assert.Equal(t, 0.2, cfg.Temperature)
		assert.Equal(t, 256, cfg.MaxTokens)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.Equal(t, 100, cfg.MaxIdleConns, "unset fields keep their defaults")
		assert.True(t, cfg.TLS.InsecureSkipVerify)
		assert.Equal(t, "ca.pem", cfg.TLS.Certificates.CaCertFile)
	})

	t.Run("should never read the api key from the file", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "model: m\napi_key: sk-from-yaml\nAPIKey: sk-from-yaml\n")
		cfg := NewConfig()
		assert.Nil(t, cfg.LoadFromYAML(path))
		assert.Empty(t, cfg.APIKey)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		cfg := NewConfig()
		err := cfg.LoadFromYAML(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.NotNil(t, err)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		path := writeFile(t, "config.yaml", "model: [unterminated\n")
		cfg := NewConfig()
		err := cfg.LoadFromYAML(path)
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "failed to decode config file")
	})
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("should read the api key and overrides from the environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		t.Setenv("MODGEN_MODEL", "gpt-4.1")
		t.Setenv("MODGEN_TEMPERATURE", "0.7")
		t.Setenv("MODGEN_TIMEOUT", "45s")
		t.Setenv("MODGEN_TLS_INSECURE_SKIP_VERIFY", "true")

		cfg := NewConfig()
		assert.Nil(t, cfg.LoadFromEnv(filepath.Join(t.TempDir(), "absent.env")))

		assert.Equal(t, "sk-env", cfg.APIKey)
		assert.Equal(t, "gpt-4.1", cfg.Model)
		assert.Equal(t, 0.7, cfg.Temperature)
		assert.Equal(t, 45*time.Second, cfg.Timeout)
		assert.True(t, cfg.TLS.InsecureSkipVerify)
		assert.Equal(t, inference.DefaultBaseURL, cfg.BaseURL, "unset variables keep the current value")
	})

	t.Run("should load the api key from a .env file", func(t *testing.T) {
		unsetEnv(t, "OPENAI_API_KEY")
		unsetEnv(t, "MODGEN_MAX_TOKENS")
		path := writeFile(t, "test.env", "# secrets\nOPENAI_API_KEY=sk-dotenv\nMODGEN_MAX_TOKENS=512\n")

		cfg := NewConfig()
		assert.Nil(t, cfg.LoadFromEnv(path))

		assert.Equal(t, "sk-dotenv", cfg.APIKey)
		assert.Equal(t, 512, cfg.MaxTokens)
	})

	t.Run("should prefer the process environment over the .env file", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-process")
		path := writeFile(t, "test.env", "OPENAI_API_KEY=sk-dotenv\n")

		cfg := NewConfig()
		assert.Nil(t, cfg.LoadFromEnv(path))
		assert.Equal(t, "sk-process", cfg.APIKey)
	})

	t.Run("should fail on an unparsable value", func(t *testing.T) {
		t.Setenv("MODGEN_MAX_TOKENS", "lots")

		cfg := NewConfig()
		err := cfg.LoadFromEnv(filepath.Join(t.TempDir(), "absent.env"))
		assert.NotNil(t, err)
		assert.Contains(t, err.Error(), "failed to parse environment")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.BaseURL = "" }, wantErr: "base_url"},
		{name: "empty model", mutate: func(c *Config) { c.Model = "" }, wantErr: "model"},
		{name: "negative temperature", mutate: func(c *Config) { c.Temperature = -0.1 }, wantErr: "temperature"},
		{name: "zero temperature is allowed", mutate: func(c *Config) { c.Temperature = 0 }},
		{name: "zero max tokens", mutate: func(c *Config) { c.MaxTokens = 0 }, wantErr: "max_tokens"},
		{name: "unknown tls version", mutate: func(c *Config) { c.TLS.MinVersion = "1.0" }, wantErr: "min_version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.Nil(t, err)
				return
			}
			assert.NotNil(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHTTPClientConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.APIKey = "sk-test"
	cfg.TLS.MinVersion = "1.2"
	cfg.TLS.Certificates.Dir = "/etc/certs"
	cfg.TLS.Certificates.CaCertFile = "ca.pem"

	hc, err := cfg.HTTPClientConfig()
	assert.Nil(t, err)
	assert.Equal(t, cfg.BaseURL, hc.BaseURL)
	assert.Equal(t, "sk-test", hc.APIKey)
	assert.Equal(t, cfg.Model, hc.Model)
	assert.Equal(t, cfg.MaxTokens, hc.MaxTokens)
	assert.Equal(t, uint16(tls.VersionTLS12), hc.TLSMinVersion)
	assert.Equal(t, filepath.Join("/etc/certs", "ca.pem"), hc.TLSCACertFile)
	assert.Empty(t, hc.TLSClientCertFile)
}

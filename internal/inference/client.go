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

package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/llm-d-incubation/modgen/internal/metrics"
	"github.com/llm-d-incubation/modgen/internal/shared/openai"
	"github.com/llm-d-incubation/modgen/internal/util/logging"
	utls "github.com/llm-d-incubation/modgen/internal/util/tls"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 1.0
	DefaultMaxTokens   = 1000

	ChatCompletionsPath = "/chat/completions"
	RequestIDHeader     = "X-Request-ID"
)

var errEmptyChoices = errors.New("empty choices in response")

// HTTPClient sends chat completion requests to an OpenAI-compatible endpoint.
// It is meant to be created once per process and shared; it holds no per-call state.
type HTTPClient struct {
	client    *resty.Client
	model     string
	maxTokens int
}

// HTTPClientConfig holds configuration for the HTTP client
type HTTPClientConfig struct {
	BaseURL         string        // Base URL of the completion API (default: "https://api.openai.com/v1")
	APIKey          string        // Optional API key, sent as "Authorization: Bearer <key>"
	Model           string        // Model used when a call does not name one (default: "gpt-4o")
	MaxTokens       int           // Response length cap sent with every request (default: 1000)
	Timeout         time.Duration // Request timeout (default: 5 minutes)
	MaxIdleConns    int           // Maximum idle connections (default: 100)
	IdleConnTimeout time.Duration // Idle connection timeout (default: 90 seconds)

	// TLS configuration (optional)
	TLSInsecureSkipVerify bool   // Skip TLS certificate verification (INSECURE, only for testing)
	TLSCACertFile         string // Path to custom CA certificate file (for private CAs)
	TLSClientCertFile     string // Path to client certificate file (for mTLS)
	TLSClientKeyFile      string // Path to client private key file (for mTLS)
	TLSMinVersion         uint16 // Minimum TLS version. Use tls.VersionTLS12, tls.VersionTLS13
	TLSMaxVersion         uint16 // Maximum TLS version (default: 0 = no max, use latest)
}

// NewHTTPClient creates a new HTTP-based completion client
func NewHTTPClient(config HTTPClientConfig) (*HTTPClient, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Minute
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.IdleConnTimeout == 0 {
		config.IdleConnTimeout = 90 * time.Second
	}

	client := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json")

	if config.APIKey != "" {
		client.SetAuthToken(config.APIKey)
	}

	// Start with Go's secure defaults and override only what we need.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = config.MaxIdleConns
	transport.MaxIdleConnsPerHost = config.MaxIdleConns
	transport.IdleConnTimeout = config.IdleConnTimeout

	tlsConfig, err := utls.GetClientTlsConfig(utls.ClientOptions{
		Insecure: config.TLSInsecureSkipVerify,
		Certificates: utls.Certificates{
			CertFile:   config.TLSClientCertFile,
			KeyFile:    config.TLSClientKeyFile,
			CaCertFile: config.TLSCACertFile,
		},
		MinVersion: config.TLSMinVersion,
		MaxVersion: config.TLSMaxVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build TLS config: %w", err)
	}
	if tlsConfig != nil {
		if config.TLSInsecureSkipVerify {
			klog.Warning("TLS certificate verification is disabled - this is insecure and should only be used for testing")
		}
		transport.TLSClientConfig = tlsConfig
	}
	client.SetTransport(transport)

	return &HTTPClient{
		client:    client,
		model:     config.Model,
		maxTokens: config.MaxTokens,
	}, nil
}

// Model returns the model used when a call passes an empty model name.
func (c *HTTPClient) Model() string {
	return c.model
}

// ChatCompletion sends the given turns and returns the text of the first completion choice.
// An empty model selects the client's default model.
func (c *HTTPClient) ChatCompletion(ctx context.Context, messages []openai.ChatMessage, model string, temperature float64) (string, error) {
	resp, err := c.send(ctx, &openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Text(), nil
}

// Complete sends prompt as a single user turn and returns the text of the first completion choice.
func (c *HTTPClient) Complete(ctx context.Context, prompt string, model string, temperature float64) (string, error) {
	return c.ChatCompletion(ctx, []openai.ChatMessage{
		{Role: openai.RoleUser, Content: prompt},
	}, model, temperature)
}

// send executes one chat completion request. Every failure is logged and returned as *ClientError.
func (c *HTTPClient) send(ctx context.Context, body *openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	if body.Model == "" {
		body.Model = c.model
	}
	body.MaxTokens = c.maxTokens

	requestID := uuid.NewString()
	ctx, logger := logging.WithRequestID(ctx, requestID)
	start := time.Now()

	logger.V(logging.DEBUG).Info("Sending chat completion request",
		"model", body.Model, "messages", len(body.Messages), "jsonMode", body.ResponseFormat != nil)

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID).
		SetBody(body).
		Post(ChatCompletionsPath)
	if err != nil {
		return nil, c.fail(logger, body.Model, start, c.handleRequestError(ctx, err))
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, c.fail(logger, body.Model, start, c.handleErrorResponse(resp.StatusCode(), resp.Body()))
	}

	var result openai.ChatCompletionResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, c.fail(logger, body.Model, start, &ClientError{
			Category: ErrCategoryServer,
			Message:  fmt.Sprintf("failed to decode completion response: %v", err),
			RawError: err,
		})
	}
	if len(result.Choices) == 0 {
		return nil, c.fail(logger, body.Model, start, &ClientError{
			Category: ErrCategoryUnknown,
			Message:  errEmptyChoices.Error(),
			RawError: errEmptyChoices,
		})
	}

	metrics.RecordCompletion(body.Model, metrics.ResultSuccess, metrics.ReasonNone, time.Since(start))
	logger.V(logging.DEBUG).Info("Received chat completion",
		"status", resp.StatusCode(), "bodySize", len(resp.Body()), "finishReason", result.Choices[0].FinishReason)

	return &result, nil
}

// fail logs and records a failed request, then hands the error back to the caller unchanged.
func (c *HTTPClient) fail(logger klog.Logger, model string, start time.Time, cerr *ClientError) *ClientError {
	metrics.RecordCompletion(model, metrics.ResultFailed, failureReason(cerr), time.Since(start))
	logger.Error(cerr, "Chat completion request failed", "model", model, "category", cerr.Category)
	return cerr
}

// handleRequestError processes request-level errors (network, timeout, cancellation)
func (c *HTTPClient) handleRequestError(ctx context.Context, err error) *ClientError {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &ClientError{
			Category: ErrCategoryUnknown,
			Message:  "request cancelled",
			RawError: err,
		}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ClientError{
			Category: ErrCategoryServer,
			Message:  "request timeout",
			RawError: err,
		}
	}
	return &ClientError{
		Category: ErrCategoryServer,
		Message:  fmt.Sprintf("failed to execute request: %v", err),
		RawError: err,
	}
}

// handleErrorResponse parses error response and maps to ClientError
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) *ClientError {
	var errorResp openai.ErrorResponse

	message := string(body)
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		message = errorResp.Error.Message
	}

	return &ClientError{
		Category: mapStatusCodeToCategory(statusCode),
		Message:  fmt.Sprintf("HTTP %d: %s", statusCode, message),
		RawError: fmt.Errorf("status code: %d, body: %s", statusCode, string(body)),
	}
}

// mapStatusCodeToCategory maps HTTP status codes to error categories
func mapStatusCodeToCategory(statusCode int) ErrorCategory {
	switch statusCode {
	case http.StatusBadRequest: // 400
		return ErrCategoryInvalidReq
	case http.StatusUnauthorized, http.StatusForbidden: // 401, 403
		return ErrCategoryAuth
	case http.StatusTooManyRequests: // 429
		return ErrCategoryRateLimit
	default:
		if statusCode >= 500 {
			return ErrCategoryServer
		}
		return ErrCategoryUnknown
	}
}

func failureReason(cerr *ClientError) string {
	switch cerr.Category {
	case ErrCategoryInvalidReq, ErrCategoryAuth:
		return metrics.ReasonClientError
	case ErrCategoryServer, ErrCategoryRateLimit:
		return metrics.ReasonServerError
	}
	if errors.Is(cerr.RawError, errEmptyChoices) {
		return metrics.ReasonEmptyChoices
	}
	return metrics.ReasonUnknown
}

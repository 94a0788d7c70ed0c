// Package client provides HTTP JSON clients for the dose parser and the
// advisory override service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nosenfield/smart-scrip/internal/circuitbreaker"
	"github.com/nosenfield/smart-scrip/internal/logger"
	"github.com/nosenfield/smart-scrip/internal/retry"
)

const maxResponseBytes = 1 << 20

// StatusError reports a non-2xx response from a collaborator.
type StatusError struct {
	Collaborator string
	StatusCode   int
	Body         string
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded %d: %s", e.Collaborator, e.StatusCode, e.Body)
}

// Retryable reports whether reissuing the call may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// Config configures a collaborator client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retry   retry.Policy
	Breaker circuitbreaker.Config
}

// jsonClient posts JSON under a retry policy and a circuit breaker.
type jsonClient struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	policy     retry.Policy
}

func newJSONClient(name string, cfg Config) *jsonClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	policy := cfg.Retry
	if policy.Name == "" {
		policy.Name = name
	}
	breakerCfg := cfg.Breaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = name
	}

	return &jsonClient{
		name:       name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    circuitbreaker.New(breakerCfg),
		policy:     policy,
	}
}

func (c *jsonClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", c.name, err)
	}

	return retry.Do(ctx, c.policy, func(ctx context.Context) error {
		err := c.breaker.Execute(ctx, func() error {
			return c.do(ctx, path, body, out)
		})
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return retry.Permanent(err)
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return retry.Permanent(err)
		}
		return err
	})
}

func (c *jsonClient) do(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("build %s request: %w", c.name, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", c.name, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.FromContext(ctx).Warn().Err(cerr).Str("collaborator", c.name).Msg("Failed to close response body")
		}
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Collaborator: c.name, StatusCode: resp.StatusCode, Body: truncate(string(payload), 200)}
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return retry.Permanent(fmt.Errorf("decode %s response: %w", c.name, err))
	}
	return nil
}

// Breaker exposes the client's circuit breaker for readiness reporting.
func (c *jsonClient) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package services

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

	"github.com/atomikkus/therapies-api/internal/config"
)

const requestTimeout = 10 * time.Minute

// ErrNotConfigured is returned when the Mistral API key is missing.
var ErrNotConfigured = errors.New("MISTRAL_API_KEY environment variable not set")

// Client is the shared Mistral API client used by the converter and the
// extractor. It is safe for concurrent use once constructed.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.MistralAPIKey) == "" {
		return nil, ErrNotConfigured
	}

	baseURL := strings.TrimSuffix(cfg.MistralBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}

	return &Client{
		apiKey:  cfg.MistralAPIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return fmt.Errorf("encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mistral request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (c *Client) decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	}

	body, _ := io.ReadAll(resp.Body)

	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("mistral api error: status %d type %s message %s", resp.StatusCode, apiErr.Type, apiErr.Message)
	}

	return fmt.Errorf("mistral api error: status %d body %s", resp.StatusCode, string(body))
}

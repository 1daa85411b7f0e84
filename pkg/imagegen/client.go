// Package imagegen calls the external image-generation API. The service is
// an opaque collaborator: source image plus prompt in, generated image bytes
// out. Every call carries an explicit timeout; a timeout is a generation
// failure like any other.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is the generation input. Tone is opaque branding context passed
// through from the owning business; the client never interprets it.
type Request struct {
	ImageURL string `json:"imageUrl"`
	Prompt   string `json:"prompt"`
	Tone     string `json:"tone,omitempty"`
}

// Client talks to the image-generation HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
}

// New creates a client. timeout <= 0 falls back to 60s.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		timeout: timeout,
		http:    &http.Client{},
	}
}

// Generate submits the request and returns the generated image bytes and
// content type. The configured timeout bounds the whole call.
func (c *Client) Generate(ctx context.Context, req Request) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/generate", bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("imagegen: upstream status %d: %s", resp.StatusCode, snippet)
	}

	img, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("imagegen: read response: %w", err)
	}
	if len(img) == 0 {
		return nil, "", fmt.Errorf("imagegen: upstream returned an empty image")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return img, contentType, nil
}

// Package gemini is a minimal REST client for the Gemini generateContent
// API, used as the pluggable external draft advisor.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrRateLimited is returned on HTTP 429 so callers can back off.
var ErrRateLimited = errors.New("gemini: rate limited")

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (%d): %s", e.Status, e.Body)
}

type Client struct {
	host       string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(httpClient *http.Client, host, apiKey, model string) *Client {
	if host == "" {
		host = "https://generativelanguage.googleapis.com"
	}
	host = strings.TrimRight(host, "/")
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Client{
		host:       host,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

func (c *Client) Name() string { return "gemini/" + c.model }

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   genConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	ResponseMIME    string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateJSON sends a prompt and decodes the model's JSON-mode reply into out.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, out any) error {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		Config: genConfig{
			Temperature:     0.3,
			MaxOutputTokens: 256,
			ResponseMIME:    "application/json",
		},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	q := url.Values{"key": {c.apiKey}}
	fullURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?%s", c.host, c.model, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("empty response")
	}
	text := gr.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("decode model reply: %w", err)
	}
	return nil
}

// Package ai generates diagram graphs from natural-language prompts using
// an OpenAI-compatible chat completions endpoint.
//
// The package splits into three layers: [Client] speaks the wire protocol
// (auth, retries, response caching), prompt construction pins the JSON
// schema the model must return, and [ParseGraph] normalizes the response
// into a [graph.Graph] ready for layout. Any endpoint implementing the
// chat completions API works; the base URL and model are configuration.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/httputil"
	"github.com/matzehuels/scrawl/pkg/observability"
)

// Role identifies the sender of a chat message.
type Role string

// Chat roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single chat message in the completions wire format.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the parsed result of a chat completions call.
type Completion struct {
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`
}

// Config holds client settings for an OpenAI-compatible endpoint.
type Config struct {
	BaseURL     string        // endpoint base, e.g. https://api.openai.com/v1
	APIKey      string        // bearer token
	Model       string        // model identifier
	Temperature float64       // sampling temperature
	MaxTokens   int           // completion token cap
	Timeout     time.Duration // per-request timeout
}

// Client calls an OpenAI-compatible chat completions API.
// It handles bearer auth, retries on transient failures, and optional
// response caching so identical prompts do not burn tokens twice.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	http  *http.Client
	cache *httputil.Cache
	cfg   Config
}

// NewClient creates a Client. Pass a nil cache to disable response caching.
func NewClient(cfg Config, cache *httputil.Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		http:  &http.Client{Timeout: timeout},
		cache: cache,
		cfg:   cfg,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.cfg.Model }

// Temperature returns the configured sampling temperature.
func (c *Client) Temperature() float64 { return c.cfg.Temperature }

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// responseFormat asks the endpoint for a JSON object response where
// supported. Endpoints that ignore it still work; parsing tolerates
// fenced output.
type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the chat completions response body.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends the messages to the chat completions endpoint and returns
// the first choice. Identical requests resolve from cache when a cache is
// configured and refresh is false.
func (c *Client) Complete(ctx context.Context, messages []Message, refresh bool) (*Completion, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeAIKey, "no API key configured")
	}

	body := chatRequest{
		Model:          c.cfg.Model,
		Messages:       messages,
		Temperature:    c.cfg.Temperature,
		MaxTokens:      c.cfg.MaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	key := "chat:" + string(payload)
	if c.cache != nil && !refresh {
		var cached Completion
		if ok, _ := c.cache.Get(key, &cached); ok {
			return &cached, nil
		}
	}

	var out *Completion
	err = httputil.RetryWithBackoff(ctx, func() error {
		result, err := c.post(ctx, payload)
		if err != nil {
			return err
		}
		out = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(key, out)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, payload []byte) (*Completion, error) {
	url := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	obs := observability.HTTP()
	obs.OnRequest(ctx, http.MethodPost, req.URL.Host, req.URL.Path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		obs.OnError(ctx, http.MethodPost, req.URL.Host, req.URL.Path, err)
		return nil, &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "chat completions request")}
	}
	defer resp.Body.Close()
	obs.OnResponse(ctx, http.MethodPost, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read response")}
	}

	if err := checkStatus(resp.StatusCode, data); err != nil {
		return nil, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAIResponse, err, "decode chat response")
	}
	if parsed.Error != nil {
		return nil, errors.New(errors.ErrCodeAIResponse, "api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New(errors.ErrCodeAIResponse, "response contains no choices")
	}

	choice := parsed.Choices[0]
	return &Completion{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        parsed.Usage,
	}, nil
}

func checkStatus(code int, body []byte) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeAIKey, "API key rejected (status %d)", code)
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeRateLimited, "rate limited")}
	case code >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork, "server error: status %d", code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "unexpected status %d: %s", code, truncate(body, 200))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return fmt.Sprintf("%s... (%d bytes)", b[:n], len(b))
}

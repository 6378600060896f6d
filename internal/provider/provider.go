// Package provider is the outbound client for chat completion services.
//
// Providers speak one of two wire kinds: the OpenAI-compatible
// /chat/completions shape (openai, mistral, deepseek, codestral, and
// local inference servers) or the Anthropic /messages shape (claude).
// Failures are reported as *Error with a human-readable message; the
// caller records them as ai.chat.failed events.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Kind selects the request/response wire shape.
type Kind string

const (
	// KindOpenAI is the OpenAI-compatible chat completions shape.
	KindOpenAI Kind = "openai"
	// KindAnthropic is the Anthropic messages shape.
	KindAnthropic Kind = "anthropic"
)

// Config describes one provider endpoint.
type Config struct {
	Name      string
	BaseURL   string
	APIKeyEnv string
	Kind      Kind
}

// Registry maps provider names to their endpoint configuration.
var Registry = map[string]Config{
	"openai": {
		Name:      "openai",
		BaseURL:   "https://api.openai.com/v1",
		APIKeyEnv: "OPENAI_API_KEY",
		Kind:      KindOpenAI,
	},
	"mistral": {
		Name:      "mistral",
		BaseURL:   "https://api.mistral.ai/v1",
		APIKeyEnv: "MISTRAL_API_KEY",
		Kind:      KindOpenAI,
	},
	"deepseek": {
		Name:      "deepseek",
		BaseURL:   "https://api.deepseek.com/v1",
		APIKeyEnv: "DEEPSEEK_API_KEY",
		Kind:      KindOpenAI,
	},
	"codestral": {
		Name:      "codestral",
		BaseURL:   "https://codestral.mistral.ai/v1",
		APIKeyEnv: "CODESTRAL_API_KEY",
		Kind:      KindOpenAI,
	},
	"claude": {
		Name:      "claude",
		BaseURL:   "https://api.anthropic.com/v1",
		APIKeyEnv: "ANTHROPIC_API_KEY",
		Kind:      KindAnthropic,
	},
	"inference": {
		Name:      "inference",
		BaseURL:   "http://localhost:11434/v1",
		APIKeyEnv: "INFERENCE_API_KEY",
		Kind:      KindOpenAI,
	},
}

// Names returns all registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Error is a provider failure with a human-readable message.
type Error struct {
	Provider string
	Message  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

func errf(provider, format string, args ...any) *Error {
	return &Error{Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// Request is one chat completion request.
type Request struct {
	Provider    string
	Model       string
	Message     string
	System      string
	Temperature float64
	MaxTokens   int
	// BaseURL overrides the registry endpoint when non-empty.
	BaseURL string
	// APIKey is the resolved key. The caller resolves flag, config file,
	// and environment; the client only checks presence.
	APIKey string
}

// Client issues chat requests over HTTP.
type Client struct {
	http *http.Client
}

// NewClient returns a client with a 60-second request timeout.
func NewClient() *Client {
	return &Client{http: &http.Client{Timeout: 60 * time.Second}}
}

// NewClientWithHTTP returns a client using the given HTTP client.
// Tests use this with httptest servers.
func NewClientWithHTTP(h *http.Client) *Client {
	return &Client{http: h}
}

// Chat sends the request and returns the assistant content plus response
// metadata. All failures come back as *Error.
func (c *Client) Chat(ctx context.Context, req Request) (string, map[string]any, error) {
	cfg, ok := Registry[req.Provider]
	if !ok {
		return "", nil, errf(req.Provider, "unsupported provider (known: %s)", strings.Join(Names(), ", "))
	}

	base := cfg.BaseURL
	if req.BaseURL != "" {
		base = req.BaseURL
	}
	base = strings.TrimRight(base, "/")

	if req.APIKey == "" && cfg.APIKeyEnv != "" {
		return "", nil, errf(req.Provider, "missing API key: set %s or pass --api-key", cfg.APIKeyEnv)
	}

	if cfg.Kind == KindAnthropic {
		return c.chatAnthropic(ctx, base, req)
	}
	return c.chatOpenAI(ctx, base, req)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

func (c *Client) chatOpenAI(ctx context.Context, base string, req Request) (string, map[string]any, error) {
	url := base + "/chat/completions"

	var messages []chatMessage
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Message})

	body := openAIRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if req.APIKey != "" {
		headers["Authorization"] = "Bearer " + req.APIKey
	}

	var parsed openAIResponse
	if err := c.postJSON(ctx, req.Provider, url, body, headers, &parsed); err != nil {
		return "", nil, err
	}

	content := ""
	if len(parsed.Choices) > 0 {
		content = parsed.Choices[0].Message.Content
		if content == "" {
			content = parsed.Choices[0].Text
		}
	}
	if content == "" {
		return "", nil, errf(req.Provider, "empty response from provider")
	}
	return content, map[string]any{"request_url": url}, nil
}

type anthropicRequest struct {
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) chatAnthropic(ctx context.Context, base string, req Request) (string, map[string]any, error) {
	url := base + "/messages"

	body := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    []chatMessage{{Role: "user", Content: req.Message}},
		System:      req.System,
	}
	headers := map[string]string{
		"Content-Type":      "application/json",
		"anthropic-version": "2023-06-01",
	}
	if req.APIKey != "" {
		headers["x-api-key"] = req.APIKey
	}

	var parsed anthropicResponse
	if err := c.postJSON(ctx, req.Provider, url, body, headers, &parsed); err != nil {
		return "", nil, err
	}

	content := ""
	if len(parsed.Content) > 0 {
		content = parsed.Content[0].Text
	}
	if content == "" {
		return "", nil, errf(req.Provider, "empty response from provider")
	}
	return content, map[string]any{"request_url": url}, nil
}

func (c *Client) postJSON(ctx context.Context, provider, url string, body any, headers map[string]string, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errf(provider, "marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errf(provider, "build request: %v", err)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return errf(provider, "connection error: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return errf(provider, "read response: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errf(provider, "HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errf(provider, "invalid JSON response")
	}
	return nil
}

// Package ollama wraps the Ollama chat API for the ollama provider adapter.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1:latest"
)

// Client is a thin wrapper over the Ollama API client bound to one model.
type Client struct {
	client *api.Client
	model  string
}

// NewClient creates a client for the Ollama server at baseURL. A nil
// httpClient uses http.DefaultClient.
func NewClient(baseURL, model string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &Client{
		client: api.NewClient(parsedURL, httpClient),
		model:  model,
	}, nil
}

// Chat sends a non-streaming chat request and returns the complete response.
// Tools are dropped for models known not to support tool calling.
func (c *Client) Chat(ctx context.Context, messages []api.Message, tools []api.Tool) (api.ChatResponse, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
	}
	if c.SupportsToolCalling() {
		req.Tools = tools
	}

	var final api.ChatResponse
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final.Model = resp.Model
		final.Message.Role = resp.Message.Role
		final.Message.Content += resp.Message.Content
		final.Message.Thinking += resp.Message.Thinking
		final.Message.ToolCalls = append(final.Message.ToolCalls, resp.Message.ToolCalls...)
		if resp.Done {
			final.Done = true
			final.DoneReason = resp.DoneReason
			final.Metrics = resp.Metrics
		}
		return nil
	})
	if err != nil {
		return api.ChatResponse{}, err
	}
	return final, nil
}

func (c *Client) GetModel() string {
	return c.model
}

// toolCallingModels tracks which model families support tool calling.
// Curated from Ollama documentation and community testing.
var toolCallingModels = map[string]bool{
	"qwen":      true, // qwen2.5-coder, qwen3
	"llama3.1":  true,
	"llama3.2":  true,
	"llama3.3":  true,
	"mistral":   true,
	"command-r": true,
	"nemotron":  true,
	"granite3":  true,
	"gpt-oss":   true,

	"llama3-gradient": false,
	"llama3":          false, // original llama3, not 3.1+
	"phi":             false,
	"gemma":           false,
	"codellama":       false,
	"deepseek":        false,
}

// orderedPrefixes is checked most specific first, so llama3.2 never matches
// the generic llama3 entry.
var orderedPrefixes = []string{
	"llama3.3", "llama3.2", "llama3.1",
	"llama3-gradient",
	"command-r", "qwen", "mistral", "nemotron", "granite3", "gpt-oss",
	"codellama",
	"llama3",
	"deepseek", "phi", "gemma",
}

// SupportsToolCalling reports whether the client's model is known to support
// Ollama's tool calling API.
func (c *Client) SupportsToolCalling() bool {
	return ModelSupportsToolCalling(c.model)
}

// ModelSupportsToolCalling reports whether modelName is known to support tool
// calling. Unknown models are assumed not to.
func ModelSupportsToolCalling(modelName string) bool {
	modelName = strings.ToLower(modelName)
	for _, prefix := range orderedPrefixes {
		if strings.HasPrefix(modelName, prefix) {
			return toolCallingModels[prefix]
		}
	}
	return false
}

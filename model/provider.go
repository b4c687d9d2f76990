package model

import (
	"context"
	"errors"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

var (
	// ErrContextLengthExceeded is wrapped by adapters when the provider
	// rejects a request because the prompt is too long for the model.
	ErrContextLengthExceeded = errors.New("context length exceeded")

	// ErrNoMessages is returned by Send when called with an empty log.
	ErrNoMessages = errors.New("no messages to send")
)

// Provider abstracts a remote language-model family behind a single contract.
//
// This interface is defined in the model package (not provider package) to avoid
// import cycles: provider implementations import model, and the assistant package
// depends only on this interface, never on a concrete adapter.
type Provider interface {
	// Functions registers the callable tools, translated to the provider's schema.
	// Calling it again replaces the previous set.
	Functions(tools []mcptypes.Tool)

	// Send issues one round-trip with the full message list and returns the
	// ordered output items of the response.
	Send(ctx context.Context, messages []Message) ([]OutputItem, error)

	BuildSystemMessage(text string) Message
	BuildUserMessage(text string) Message
	BuildAssistantMessage(text string) Message

	// Usage returns the token usage observed on the last round-trip.
	Usage() UsageSnapshot

	// GetModel returns the model identifier used for API calls.
	GetModel() string

	// GetDisplayName returns the model name formatted for UI display.
	GetDisplayName() string
}

// FileStore is implemented by adapters whose provider owns a remote file store.
type FileStore interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
	Delete(ctx context.Context, remoteID string) error
}

// ItemType identifies the kind of a provider output item.
type ItemType int

const (
	ItemText ItemType = iota
	ItemReasoning
	ItemToolCall
)

// OutputItem is one element of a provider response, in the order the
// provider produced it.
type OutputItem struct {
	Type      ItemType
	Text      string
	Reasoning *Reasoning
	ToolCall  *ToolCall
}

func TextItem(text string) OutputItem {
	return OutputItem{Type: ItemText, Text: text}
}

func ReasoningItem(id string, summary ...string) OutputItem {
	return OutputItem{Type: ItemReasoning, Reasoning: &Reasoning{ID: id, Summary: summary}}
}

func ToolCallItem(id, name, arguments string) OutputItem {
	return OutputItem{Type: ItemToolCall, ToolCall: &ToolCall{ID: id, Name: name, Arguments: arguments}}
}

// UsageSnapshot holds the token counts of the last provider round-trip.
type UsageSnapshot struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

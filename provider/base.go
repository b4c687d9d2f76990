package provider

import (
	"context"
	"sync"
	"time"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"teros/model"
)

// base carries the state every adapter shares: the registered tools, the
// usage of the last round-trip and the request timeout.
type base struct {
	model   string
	timeout time.Duration

	mu    sync.Mutex
	tools []mcptypes.Tool
	usage model.UsageSnapshot
}

func newBase(modelName string, timeout time.Duration) base {
	return base{model: modelName, timeout: timeout}
}

func (b *base) Functions(tools []mcptypes.Tool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tools = append([]mcptypes.Tool(nil), tools...)
}

func (b *base) registeredTools() []mcptypes.Tool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tools
}

func (b *base) Usage() model.UsageSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.usage
}

func (b *base) setUsage(u model.UsageSnapshot) {
	if u.TotalTokens == 0 {
		u.TotalTokens = u.InputTokens + u.OutputTokens
	}
	b.mu.Lock()
	b.usage = u
	b.mu.Unlock()
}

func (b *base) GetModel() string {
	return b.model
}

func (b *base) GetDisplayName() string {
	return b.model
}

func (b *base) BuildSystemMessage(text string) model.Message {
	return model.NewSystemMessage(text)
}

func (b *base) BuildUserMessage(text string) model.Message {
	return model.NewUserMessage(text)
}

func (b *base) BuildAssistantMessage(text string) model.Message {
	return model.NewAssistantMessage(text)
}

func (b *base) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.timeout)
}

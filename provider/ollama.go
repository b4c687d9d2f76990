package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ollama/ollama/api"

	"teros/model"
	"teros/ollama"
	"teros/tools"
)

// OllamaProvider wraps ollama.Client to implement model.Provider.
//
// Ollama has no file store and assigns no tool call ids; ids are generated
// locally and attachments are rendered inline, images as base64 image data.
type OllamaProvider struct {
	base
	client *ollama.Client
}

// NewOllamaProvider creates an adapter for the Ollama server at cfg.BaseURL
// (default http://localhost:11434).
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	client, err := ollama.NewClient(cfg.BaseURL, cfg.Model, cfg.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}

	return &OllamaProvider{
		base:   newBase(client.GetModel(), cfg.RequestTimeout),
		client: client,
	}, nil
}

func (p *OllamaProvider) Send(ctx context.Context, messages []model.Message) ([]model.OutputItem, error) {
	if len(messages) == 0 {
		return nil, model.ErrNoMessages
	}

	var fns []api.Tool
	if registered := p.registeredTools(); len(registered) > 0 {
		fns = tools.ConvertToOllamaFormat(registered)
	}

	ctx, cancel := p.requestContext(ctx)
	defer cancel()

	resp, err := p.client.Chat(ctx, ConvertToOllamaMessages(messages), fns)
	if err != nil {
		return nil, wrapSendError("Ollama", err)
	}

	p.setUsage(model.UsageSnapshot{
		InputTokens:  int64(resp.PromptEvalCount),
		OutputTokens: int64(resp.EvalCount),
	})
	return convertFromOllamaMessage(resp.Message), nil
}

// ConvertToOllamaMessages maps the log to Ollama chat messages.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))

	for _, msg := range messages {
		switch msg.Kind {
		case model.KindToolCall:
			if msg.ToolCall == nil {
				continue
			}
			out = append(out, api.Message{
				Role: string(model.RoleAssistant),
				ToolCalls: []api.ToolCall{{
					Function: api.ToolCallFunction{
						Name:      msg.ToolCall.Name,
						Arguments: ParseToolArguments(msg.ToolCall.Arguments),
					},
				}},
			})

		case model.KindToolResult:
			if msg.ToolResult == nil {
				continue
			}
			out = append(out, api.Message{
				Role:     "tool",
				Content:  msg.ToolResult.Output,
				ToolName: msg.ToolResult.Name,
			})

		case model.KindReasoning:
			continue

		default:
			if len(msg.Attachments) > 0 {
				m := api.Message{Role: string(model.RoleUser), Content: inlineAttachmentMessage(msg)}
				for _, ref := range msg.Attachments {
					if isImage(ref.ContentType) && len(ref.Data) > 0 {
						m.Images = append(m.Images, api.ImageData(ref.Data))
					}
				}
				out = append(out, m)
				continue
			}
			out = append(out, api.Message{Role: string(msg.Role), Content: msg.Text})
		}
	}
	return out
}

func convertFromOllamaMessage(msg api.Message) []model.OutputItem {
	var items []model.OutputItem

	if msg.Thinking != "" {
		items = append(items, model.ReasoningItem("", msg.Thinking))
	}
	if msg.Content != "" {
		items = append(items, model.TextItem(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		args, err := json.Marshal(tc.Function.Arguments)
		if err != nil || tc.Function.Arguments == nil {
			args = []byte("{}")
		}
		items = append(items, model.ToolCallItem(newCallID(), tc.Function.Name, string(args)))
	}
	return items
}

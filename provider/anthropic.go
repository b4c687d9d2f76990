package provider

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"teros/model"
	"teros/tools"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com"
	DefaultAnthropicModel   = anthropic.ModelClaudeSonnet4_5_20250929

	anthropicMaxTokens = 4096
)

// AnthropicProvider implements model.Provider on the Anthropic Messages API.
// It has no file store; attachments are rendered inline.
type AnthropicProvider struct {
	base
	client anthropic.Client
}

// NewAnthropicProvider creates an adapter for the Messages API.
//
// Returns an error if the API key is missing.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAnthropicBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = string(DefaultAnthropicModel)
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &AnthropicProvider{
		base:   newBase(cfg.Model, cfg.RequestTimeout),
		client: anthropic.NewClient(opts...),
	}, nil
}

func (p *AnthropicProvider) Send(ctx context.Context, messages []model.Message) ([]model.OutputItem, error) {
	if len(messages) == 0 {
		return nil, model.ErrNoMessages
	}

	msgs, system := convertToAnthropicMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		Messages:  msgs,
		MaxTokens: anthropicMaxTokens,
	}
	if len(system) > 0 {
		params.System = system
	}
	if fns := p.registeredTools(); len(fns) > 0 {
		params.Tools = tools.ConvertToAnthropicFormat(fns)
	}

	ctx, cancel := p.requestContext(ctx)
	defer cancel()

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, wrapSendError("Anthropic", err)
	}

	p.setUsage(model.UsageSnapshot{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})
	return convertFromAnthropicContent(resp.Content), nil
}

// convertToAnthropicMessages hoists system text into the system parameter
// and merges consecutive same-role messages, since the API requires
// alternating roles. Tool calls become tool_use blocks, results tool_result
// blocks in the following user turn.
func convertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var (
		system []anthropic.TextBlockParam
		out    []anthropic.MessageParam
	)

	add := func(role anthropic.MessageParamRole, blocks ...anthropic.ContentBlockParamUnion) {
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, msg := range messages {
		switch msg.Kind {
		case model.KindToolCall:
			if msg.ToolCall == nil {
				continue
			}
			add(anthropic.MessageParamRoleAssistant,
				anthropic.NewToolUseBlock(msg.ToolCall.ID, rawArguments(msg.ToolCall.Arguments), msg.ToolCall.Name))

		case model.KindToolResult:
			if msg.ToolResult == nil {
				continue
			}
			add(anthropic.MessageParamRoleUser,
				anthropic.NewToolResultBlock(msg.ToolResult.CallID, msg.ToolResult.Output, false))

		case model.KindReasoning:
			// thinking blocks can only be replayed with their signature
			continue

		default:
			switch {
			case len(msg.Attachments) > 0:
				blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(inlineAttachmentMessage(msg))}
				for _, ref := range msg.Attachments {
					if isImage(ref.ContentType) && len(ref.Data) > 0 {
						blocks = append(blocks, anthropic.NewImageBlockBase64(ref.ContentType, base64.StdEncoding.EncodeToString(ref.Data)))
					}
				}
				add(anthropic.MessageParamRoleUser, blocks...)
			case msg.Role == model.RoleSystem:
				system = append(system, anthropic.TextBlockParam{Text: msg.Text})
			case msg.Role == model.RoleAssistant:
				add(anthropic.MessageParamRoleAssistant, anthropic.NewTextBlock(msg.Text))
			default:
				add(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(msg.Text))
			}
		}
	}
	return out, system
}

func convertFromAnthropicContent(content []anthropic.ContentBlockUnion) []model.OutputItem {
	items := make([]model.OutputItem, 0, len(content))
	for _, block := range content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			if b.Text != "" {
				items = append(items, model.TextItem(b.Text))
			}
		case anthropic.ThinkingBlock:
			items = append(items, model.ReasoningItem("", b.Thinking))
		case anthropic.ToolUseBlock:
			items = append(items, model.ToolCallItem(b.ID, b.Name, string(b.Input)))
		}
	}
	return items
}

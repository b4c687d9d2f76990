package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"

	"teros/model"
	"teros/tools"
)

const (
	DefaultGrokBaseURL = "https://api.x.ai/v1"
	DefaultGrokModel   = "grok-4-fast-reasoning"
)

// GrokProvider implements model.Provider on xAI's OpenAI-compatible chat
// completions endpoint and model.FileStore on its Files API.
//
// Chat completions cannot reference uploaded files, so attachment messages
// are rendered inline: extracted text for text-like files and image parts
// for images.
type GrokProvider struct {
	base
	openAIFiles
	client openai.Client
}

// NewGrokProvider creates an adapter for xAI.
//
// Returns an error if the API key is missing.
func NewGrokProvider(cfg Config) (*GrokProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("xAI API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGrokBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGrokModel
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	p := &GrokProvider{
		base:   newBase(cfg.Model, cfg.RequestTimeout),
		client: openai.NewClient(opts...),
	}
	p.openAIFiles = openAIFiles{client: &p.client, purpose: openai.FilePurposeAssistants, name: "xAI"}
	return p, nil
}

func (p *GrokProvider) Send(ctx context.Context, messages []model.Message) ([]model.OutputItem, error) {
	if len(messages) == 0 {
		return nil, model.ErrNoMessages
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    convertToChatMessages(messages),
		Temperature: openai.Float(0.3),
		TopP:        openai.Float(1.0),
		N:           openai.Int(1),
	}
	if fns := p.registeredTools(); len(fns) > 0 {
		params.Tools = tools.ConvertToChatCompletionFormat(fns)
	}

	ctx, cancel := p.requestContext(ctx)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, wrapSendError("xAI", err)
	}

	p.setUsage(model.UsageSnapshot{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	})

	if len(resp.Choices) == 0 {
		return nil, nil
	}
	return convertFromChatMessage(resp.Choices[0].Message), nil
}

// convertToChatMessages maps the log to chat completion messages. Reasoning
// traces have no chat representation and are dropped.
func convertToChatMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Kind {
		case model.KindToolCall:
			if msg.ToolCall == nil {
				continue
			}
			asst := openai.ChatCompletionAssistantMessageParam{
				ToolCalls: []openai.ChatCompletionMessageToolCallUnionParam{{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: msg.ToolCall.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      msg.ToolCall.Name,
							Arguments: string(rawArguments(msg.ToolCall.Arguments)),
						},
					},
				}},
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})

		case model.KindToolResult:
			if msg.ToolResult == nil {
				continue
			}
			out = append(out, openai.ToolMessage(msg.ToolResult.Output, msg.ToolResult.CallID))

		case model.KindReasoning:
			continue

		default:
			if len(msg.Attachments) > 0 {
				out = append(out, inlineChatAttachments(msg))
				continue
			}
			switch msg.Role {
			case model.RoleSystem:
				out = append(out, openai.SystemMessage(msg.Text))
			case model.RoleAssistant:
				out = append(out, openai.AssistantMessage(msg.Text))
			default:
				out = append(out, openai.UserMessage(msg.Text))
			}
		}
	}
	return out
}

// inlineChatAttachments renders an attachment message as a user message with
// a text part and one image part per image.
func inlineChatAttachments(msg model.Message) openai.ChatCompletionMessageParamUnion {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(inlineAttachmentMessage(msg)),
	}
	for _, ref := range msg.Attachments {
		if isImage(ref.ContentType) && len(ref.Data) > 0 {
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: dataURL(ref),
			}))
		}
	}
	return openai.UserMessage(parts)
}

// convertFromChatMessage maps one assistant choice to output items:
// reasoning first, then text, then tool calls.
func convertFromChatMessage(msg openai.ChatCompletionMessage) []model.OutputItem {
	var items []model.OutputItem

	if reasoning := strings.TrimSpace(gjson.Get(msg.RawJSON(), "reasoning_content").String()); reasoning != "" {
		items = append(items, model.ReasoningItem("", reasoning))
	}
	if msg.Content != "" {
		items = append(items, model.TextItem(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		id := tc.ID
		if id == "" {
			id = newCallID()
		}
		items = append(items, model.ToolCallItem(id, tc.Function.Name, tc.Function.Arguments))
	}
	return items
}

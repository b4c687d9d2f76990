package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"teros/model"
	"teros/tools"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-5-mini"
)

// reasoningFamilies accept reasoning parameters and reject temperature.
var reasoningFamilies = []string{"gpt-5", "o1", "o3", "o4"}

// OpenAIProvider implements model.Provider on the OpenAI Responses API and
// model.FileStore on the Files API.
type OpenAIProvider struct {
	base
	openAIFiles
	client openai.Client
}

// NewOpenAIProvider creates an adapter for the Responses API.
//
// Returns an error if the API key is missing.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	p := &OpenAIProvider{
		base:   newBase(cfg.Model, cfg.RequestTimeout),
		client: openai.NewClient(opts...),
	}
	p.openAIFiles = openAIFiles{client: &p.client, purpose: openai.FilePurposeUserData, name: "OpenAI"}
	return p, nil
}

// isReasoningModel reports whether name belongs to a reasoning family.
func isReasoningModel(name string) bool {
	name = strings.ToLower(name)
	for _, family := range reasoningFamilies {
		if strings.HasPrefix(name, family) {
			return true
		}
	}
	return false
}

func (p *OpenAIProvider) Send(ctx context.Context, messages []model.Message) ([]model.OutputItem, error) {
	if len(messages) == 0 {
		return nil, model.ErrNoMessages
	}

	params := responses.ResponseNewParams{
		Model:             shared.ResponsesModel(p.model),
		Input:             responses.ResponseNewParamsInputUnion{OfInputItemList: convertToResponsesInput(messages)},
		ParallelToolCalls: openai.Bool(true),
	}
	if fns := p.registeredTools(); len(fns) > 0 {
		params.Tools = tools.ConvertToResponsesFormat(fns)
	}
	if isReasoningModel(p.model) {
		params.Reasoning = shared.ReasoningParam{
			Effort:  shared.ReasoningEffortMedium,
			Summary: shared.ReasoningSummaryAuto,
		}
	} else {
		params.Temperature = openai.Float(1.0)
	}

	ctx, cancel := p.requestContext(ctx)
	defer cancel()

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return nil, wrapSendError("OpenAI", err)
	}

	p.setUsage(model.UsageSnapshot{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	})
	return convertFromResponsesOutput(resp.Output), nil
}

// convertToResponsesInput maps the log to Responses input items.
func convertToResponsesInput(messages []model.Message) responses.ResponseInputParam {
	input := make(responses.ResponseInputParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Kind {
		case model.KindToolCall:
			if msg.ToolCall == nil {
				continue
			}
			input = append(input, responses.ResponseInputItemParamOfFunctionCall(
				string(rawArguments(msg.ToolCall.Arguments)), msg.ToolCall.ID, msg.ToolCall.Name,
			))

		case model.KindToolResult:
			if msg.ToolResult == nil {
				continue
			}
			input = append(input, responses.ResponseInputItemParamOfFunctionCallOutput(
				msg.ToolResult.CallID, msg.ToolResult.Output,
			))

		case model.KindReasoning:
			// only replayable when the API issued an id for it
			if msg.Reasoning == nil || msg.Reasoning.ID == "" {
				continue
			}
			summary := make([]responses.ResponseReasoningItemSummaryParam, 0, len(msg.Reasoning.Summary))
			for _, s := range msg.Reasoning.Summary {
				summary = append(summary, responses.ResponseReasoningItemSummaryParam{Text: s})
			}
			input = append(input, responses.ResponseInputItemParamOfReasoning(msg.Reasoning.ID, summary))

		default:
			if len(msg.Attachments) > 0 {
				input = append(input, attachmentInput(msg)...)
				continue
			}
			input = append(input, responses.ResponseInputItemParamOfMessage(msg.Text, easyRole(msg.Role)))
		}
	}
	return input
}

// attachmentInput renders an attachment message as the system listing plus
// a user message referencing every uploaded file by id.
func attachmentInput(msg model.Message) []responses.ResponseInputItemUnionParam {
	content := responses.ResponseInputMessageContentListParam{
		{OfInputText: &responses.ResponseInputTextParam{Text: "Attached files:"}},
	}
	for _, ref := range msg.Attachments {
		if isImage(ref.ContentType) {
			content = append(content, responses.ResponseInputContentUnionParam{
				OfInputImage: &responses.ResponseInputImageParam{
					FileID: openai.String(ref.RemoteID),
					Detail: responses.ResponseInputImageDetailAuto,
				},
			})
			continue
		}
		content = append(content, responses.ResponseInputContentUnionParam{
			OfInputFile: &responses.ResponseInputFileParam{FileID: openai.String(ref.RemoteID)},
		})
	}

	return []responses.ResponseInputItemUnionParam{
		responses.ResponseInputItemParamOfMessage(msg.Text, responses.EasyInputMessageRoleSystem),
		responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser),
	}
}

func easyRole(role model.Role) responses.EasyInputMessageRole {
	switch role {
	case model.RoleSystem:
		return responses.EasyInputMessageRoleSystem
	case model.RoleAssistant:
		return responses.EasyInputMessageRoleAssistant
	default:
		return responses.EasyInputMessageRoleUser
	}
}

// convertFromResponsesOutput maps Responses output items, in order.
func convertFromResponsesOutput(output []responses.ResponseOutputItemUnion) []model.OutputItem {
	items := make([]model.OutputItem, 0, len(output))

	for _, out := range output {
		switch out.Type {
		case "message":
			var text strings.Builder
			for _, part := range out.AsMessage().Content {
				if part.Type == "output_text" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				items = append(items, model.TextItem(text.String()))
			}

		case "reasoning":
			r := out.AsReasoning()
			summary := make([]string, 0, len(r.Summary))
			for _, s := range r.Summary {
				if s.Text != "" {
					summary = append(summary, s.Text)
				}
			}
			items = append(items, model.ReasoningItem(r.ID, summary...))

		case "function_call":
			fc := out.AsFunctionCall()
			items = append(items, model.ToolCallItem(fc.CallID, fc.Name, fc.Arguments))
		}
	}
	return items
}

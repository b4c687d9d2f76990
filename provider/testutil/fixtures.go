package testutil

import (
	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"teros/model"
)

// TestMessages returns a sample conversation with one completed tool call.
func TestMessages() []model.Message {
	return []model.Message{
		model.NewSystemMessage("You are a test assistant."),
		model.NewUserMessage("What's the weather in Bern?"),
		model.NewToolCallMessage(model.ToolCall{ID: "call_1", Name: "get_weather", Arguments: `{"location":"Bern"}`}),
		model.NewToolResultMessage(model.ToolResult{CallID: "call_1", Name: "get_weather", Output: `{"sky":"clear"}`}),
		model.NewAssistantMessage("It is clear in Bern."),
		model.NewUserMessage("Thanks!"),
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{model.NewUserMessage(content)}
}

// AttachmentMessage returns the system message listing one uploaded file.
func AttachmentMessage(remoteID, filename, contentType string, data []byte) model.Message {
	return model.NewAttachmentMessage(
		"The function call (id: call_1) returned the following file(s) for analysis:\n- "+filename+" ("+remoteID+")",
		[]model.AttachmentRef{{Filename: filename, ContentType: contentType, RemoteID: remoteID, Data: data}},
	)
}

// TestMCPTools returns sample tools for testing
func TestMCPTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "get_weather",
			Description: "Get the current weather for a location",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "The city and state, e.g. San Francisco, CA",
					},
				},
				Required: []string{"location"},
			},
		},
		{
			Name:        "calculate",
			Description: "Perform a mathematical calculation",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"expression": map[string]any{
						"type":        "string",
						"description": "The mathematical expression to evaluate",
					},
				},
				Required: []string{"expression"},
			},
		},
	}
}

package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"teros/model"
	"teros/provider/testutil"
)

const messagesReply = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-5-20250929",
  "content": [
    {"type": "thinking", "thinking": "Weather needs a tool.", "signature": "sig"},
    {"type": "text", "text": "Looking it up."},
    {"type": "tool_use", "id": "toolu_1", "name": "get_weather", "input": {"location": "Bern"}}
  ],
  "stop_reason": "tool_use",
  "usage": {"input_tokens": 40, "output_tokens": 12}
}`

func newTestAnthropic(t *testing.T) (*AnthropicProvider, *fakeAPI) {
	t.Helper()
	api := newFakeAPI(t)
	p, err := NewAnthropicProvider(Config{BaseURL: api.URL, APIKey: "sk-ant-test"})
	require.NoError(t, err)
	return p, api
}

func TestAnthropicSend(t *testing.T) {
	p, api := newTestAnthropic(t)
	api.handle("POST /v1/messages", 200, messagesReply)
	p.Functions(testutil.TestMCPTools())

	items, err := p.Send(context.Background(), testutil.TestMessages())
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, model.ReasoningItem("", "Weather needs a tool."), items[0])
	assert.Equal(t, model.TextItem("Looking it up."), items[1])
	assert.Equal(t, "toolu_1", items[2].ToolCall.ID)
	assert.JSONEq(t, `{"location":"Bern"}`, items[2].ToolCall.Arguments)
	assert.Equal(t, model.UsageSnapshot{InputTokens: 40, OutputTokens: 12, TotalTokens: 52}, p.Usage())

	body := api.requests("POST /v1/messages")[0]
	assert.Equal(t, string(DefaultAnthropicModel), gjson.Get(body, "model").String())
	assert.Equal(t, "You are a test assistant.", gjson.Get(body, "system.0.text").String())
	assert.Equal(t, "get_weather", gjson.Get(body, "tools.0.name").String())

	msgs := gjson.Get(body, "messages").Array()
	require.Len(t, msgs, 5)
	assert.Equal(t, "user", msgs[0].Get("role").String())
	assert.Equal(t, "tool_use", msgs[1].Get("content.0.type").String())
	assert.Equal(t, "Bern", msgs[1].Get("content.0.input.location").String())
	assert.Equal(t, "tool_result", msgs[2].Get("content.0.type").String())
	assert.Equal(t, "call_1", msgs[2].Get("content.0.tool_use_id").String())
	assert.Equal(t, "assistant", msgs[3].Get("role").String())
	assert.Equal(t, "user", msgs[4].Get("role").String())
}

func TestAnthropicMergesToolResultsAndAttachments(t *testing.T) {
	p, api := newTestAnthropic(t)
	api.handle("POST /v1/messages", 200, `{"id":"msg_2","type":"message","role":"assistant","content":[{"type":"text","text":"done"}],"usage":{"input_tokens":1,"output_tokens":1}}`)

	msgs := []model.Message{
		model.NewUserMessage("two lookups please"),
		model.NewToolCallMessage(model.ToolCall{ID: "a", Name: "lookup", Arguments: `{}`}),
		model.NewToolResultMessage(model.ToolResult{CallID: "a", Name: "lookup", Output: `1`}),
		model.NewToolCallMessage(model.ToolCall{ID: "b", Name: "lookup", Arguments: `{}`}),
		model.NewToolResultMessage(model.ToolResult{CallID: "b", Name: "lookup", Output: `2`}),
		testutil.AttachmentMessage("inline-1", "notes.txt", "text/plain", []byte("remember the milk")),
	}
	_, err := p.Send(context.Background(), msgs)
	require.NoError(t, err)

	out := gjson.Get(api.requests("POST /v1/messages")[0], "messages").Array()
	require.Len(t, out, 5)
	last := out[4]
	assert.Equal(t, "user", last.Get("role").String())
	assert.Equal(t, "tool_result", last.Get("content.0.type").String())
	assert.Equal(t, "text", last.Get("content.1.type").String())
	assert.Contains(t, last.Get("content.1.text").String(), "remember the milk")
}

func TestAnthropicContextLengthError(t *testing.T) {
	p, api := newTestAnthropic(t)
	api.handle("POST /v1/messages", 400, `{"type":"error","error":{"type":"invalid_request_error","message":"prompt is too long: 250000 tokens > 200000 maximum"}}`)

	_, err := p.Send(context.Background(), testutil.SingleUserMessage("hi"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrContextLengthExceeded))
}

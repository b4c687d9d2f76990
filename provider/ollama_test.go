package provider

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"teros/model"
	"teros/provider/testutil"
)

const ollamaReply = `{"model":"llama3.1","created_at":"2025-01-01T00:00:00Z","message":{"role":"assistant","content":"","thinking":"Use the tool.","tool_calls":[{"function":{"name":"get_weather","arguments":{"location":"Bern"}}}]},"done":true,"done_reason":"stop","prompt_eval_count":33,"eval_count":7}`

func newTestOllama(t *testing.T, modelName string) (*OllamaProvider, *fakeAPI) {
	t.Helper()
	api := newFakeAPI(t)
	p, err := NewOllamaProvider(Config{BaseURL: api.URL, Model: modelName})
	require.NoError(t, err)
	return p, api
}

func TestOllamaSend(t *testing.T) {
	p, api := newTestOllama(t, "llama3.1")
	api.handle("POST /api/chat", 200, ollamaReply)
	p.Functions(testutil.TestMCPTools())

	items, err := p.Send(context.Background(), testutil.TestMessages())
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, model.ReasoningItem("", "Use the tool."), items[0])
	require.Equal(t, model.ItemToolCall, items[1].Type)
	assert.True(t, strings.HasPrefix(items[1].ToolCall.ID, "call_"))
	assert.Equal(t, "get_weather", items[1].ToolCall.Name)
	assert.JSONEq(t, `{"location":"Bern"}`, items[1].ToolCall.Arguments)
	assert.Equal(t, model.UsageSnapshot{InputTokens: 33, OutputTokens: 7, TotalTokens: 40}, p.Usage())

	body := api.requests("POST /api/chat")[0]
	assert.False(t, gjson.Get(body, "stream").Bool())
	assert.Equal(t, "get_weather", gjson.Get(body, "tools.0.function.name").String())

	msgs := gjson.Get(body, "messages").Array()
	require.Len(t, msgs, 6)
	assert.Equal(t, "get_weather", msgs[2].Get("tool_calls.0.function.name").String())
	assert.Equal(t, "Bern", msgs[2].Get("tool_calls.0.function.arguments.location").String())
	assert.Equal(t, "tool", msgs[3].Get("role").String())
	assert.Equal(t, "get_weather", msgs[3].Get("tool_name").String())
}

func TestOllamaSkipsToolsForUnsupportedModels(t *testing.T) {
	p, api := newTestOllama(t, "gemma3:4b")
	api.handle("POST /api/chat", 200, `{"model":"gemma3:4b","message":{"role":"assistant","content":"Hi!"},"done":true}`)
	p.Functions(testutil.TestMCPTools())

	items, err := p.Send(context.Background(), testutil.SingleUserMessage("hi"))
	require.NoError(t, err)
	assert.Equal(t, []model.OutputItem{model.TextItem("Hi!")}, items)
	assert.False(t, gjson.Get(api.requests("POST /api/chat")[0], "tools").Exists())
}

func TestConvertToOllamaMessagesInlinesImages(t *testing.T) {
	msgs := ConvertToOllamaMessages([]model.Message{
		testutil.AttachmentMessage("inline-1", "chart.png", "image/png", []byte{1, 2, 3}),
	})
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "=== FILE: chart.png (remote-id: inline-1) ===")
	require.Len(t, msgs[0].Images, 1)
	assert.Equal(t, []byte{1, 2, 3}, []byte(msgs[0].Images[0]))
}

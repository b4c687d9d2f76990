package guardian

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teros/model"
)

func TestTruncateKeepsSystemAndTail(t *testing.T) {
	log := longConversation() // 42 messages
	out := Truncate(log, EmergencyKeep)

	require.Len(t, out, EmergencyKeep)
	assert.Equal(t, log[0], out[0])
	assert.Equal(t, log[len(log)-9:], out[1:])
	assert.Len(t, log, 42, "input untouched")
}

func TestTruncateNeverOrphansToolResult(t *testing.T) {
	log := []model.Message{model.NewSystemMessage("sys")}
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("call_%d", i)
		log = append(log,
			model.NewToolCallMessage(model.ToolCall{ID: id, Name: "lookup", Arguments: "{}"}),
			model.NewToolResultMessage(model.ToolResult{CallID: id, Name: "lookup", Output: "{}"}),
		)
	}
	log = append(log, model.NewUserMessage("what now?"))

	out := Truncate(log, 4)
	for i, m := range out {
		if m.Kind == model.KindToolResult {
			require.Greater(t, i, 0)
			prev := out[i-1]
			require.Equal(t, model.KindToolCall, prev.Kind)
			assert.Equal(t, prev.ToolCall.ID, m.ToolResult.CallID)
		}
	}
	// the last pair would open the log with a tool call, so it goes too
	require.Len(t, out, 2)
	assert.Equal(t, "what now?", out[len(out)-1].Text)
}

func TestTruncateResumesOnUserMessage(t *testing.T) {
	log := []model.Message{
		model.NewSystemMessage("sys"),
		model.NewUserMessage("first"),
		model.NewAssistantMessage("answer one"),
		model.NewAssistantMessage("answer two"),
		model.NewUserMessage("second"),
		model.NewAssistantMessage("answer three"),
		model.NewUserMessage("third"),
	}

	out := Truncate(log, 6)
	require.Len(t, out, 4)
	assert.Equal(t, "sys", out[0].Text)
	assert.True(t, out[1].IsText(model.RoleUser))
	assert.Equal(t, "second", out[1].Text)
	assert.Equal(t, "third", out[3].Text)
}

func TestTruncateDropsOldToolCallsOfCurrentTurn(t *testing.T) {
	log := []model.Message{
		model.NewSystemMessage("sys"),
		model.NewUserMessage("collect everything"),
	}
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("call_%d", i)
		log = append(log,
			model.NewToolCallMessage(model.ToolCall{ID: id, Name: "lookup", Arguments: "{}"}),
			model.NewToolResultMessage(model.ToolResult{CallID: id, Name: "lookup", Output: "{}"}),
		)
	}
	log = append(log, model.NewReasoningMessage(model.Reasoning{ID: "rs_1", Summary: []string{"one more"}}))
	log = append(log,
		model.NewToolCallMessage(model.ToolCall{ID: "call_6", Name: "lookup", Arguments: "{}"}),
		model.NewToolResultMessage(model.ToolResult{CallID: "call_6", Name: "lookup", Output: "{}"}),
		model.NewAttachmentMessage("The function call (id: call_6) returned the following file(s) for analysis:", nil),
	)
	require.Len(t, log, 18)

	out := Truncate(log, EmergencyKeep)
	require.Len(t, out, EmergencyKeep)
	assert.Equal(t, log[:2], out[:2])
	assert.Equal(t, log[len(log)-8:], out[2:], "newest calls kept in order")

	for i, m := range out {
		if m.Kind == model.KindToolResult {
			assert.Equal(t, out[i-1].ToolCall.ID, m.ToolResult.CallID)
		}
	}
}

func TestTruncateKeepsNewestToolCall(t *testing.T) {
	log := []model.Message{
		model.NewSystemMessage("sys"),
		model.NewUserMessage("go"),
		model.NewReasoningMessage(model.Reasoning{ID: "rs_1"}),
		model.NewToolCallMessage(model.ToolCall{ID: "call_1", Name: "dump", Arguments: "{}"}),
		model.NewToolResultMessage(model.ToolResult{CallID: "call_1", Name: "dump", Output: "{}"}),
	}

	assert.Equal(t, log, Truncate(log, 2))
}

func TestTruncateKeepsLastUserMessage(t *testing.T) {
	log := []model.Message{
		model.NewSystemMessage("sys"),
		model.NewUserMessage("only question"),
		model.NewAssistantMessage("a"),
		model.NewAssistantMessage("b"),
		model.NewAssistantMessage("c"),
	}

	out := Truncate(log, 2)
	require.Len(t, out, 5, "nothing before the last user message can go")
	assert.Equal(t, log, out)
}

func TestTruncateShortLogUnchanged(t *testing.T) {
	log := []model.Message{model.NewSystemMessage("sys"), model.NewUserMessage("hi")}
	assert.Equal(t, log, Truncate(log, EmergencyKeep))
}

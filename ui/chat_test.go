package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teros/assistant"
	"teros/guardian"
	"teros/model"
	"teros/provider/testutil"
	"teros/tools"
)

func newTestChat(t *testing.T, p *testutil.MockProvider) Chat {
	t.Helper()
	s := assistant.NewSession(p,
		assistant.WithUserName("Ada"),
		assistant.WithGuardian(guardian.New(p.GetModel(), guardian.WithEstimator(guardian.CharEstimator{}))),
	)
	m, _ := NewChat(s).Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m.(Chat)
}

func typeAndSend(t *testing.T, c Chat, input string) (Chat, tea.Cmd) {
	t.Helper()
	c.textarea.SetValue(input)
	m, cmd := c.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m.(Chat), cmd
}

func TestMatchTools(t *testing.T) {
	names := []string{"get_time", "read_file", "get_weather"}

	tests := []struct {
		query string
		want  []string
	}{
		{"", names},
		{"read", []string{"read_file"}},
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, matchTools(tt.query, names))
		})
	}

	got := matchTools("get", names)
	assert.ElementsMatch(t, []string{"get_time", "get_weather"}, got)
}

func TestStatusLine(t *testing.T) {
	long := strings.Repeat("reasoning ", 20)

	line := statusLine(long, 40)
	assert.LessOrEqual(t, len([]rune(line)), 36)
	assert.True(t, strings.HasSuffix(line, "…"))

	assert.Equal(t, "a b c", statusLine("a\n b\tc", 40))
	assert.Empty(t, statusLine("anything", 3))
}

func TestSubmitRunsCallAndShowsAnswer(t *testing.T) {
	p := testutil.NewMockProvider("test-model").Script(testutil.Response{
		Items: []model.OutputItem{model.TextItem("**4**")},
	})
	c := newTestChat(t, p)

	c, cmd := typeAndSend(t, c, "What's 2+2?")
	require.NotNil(t, cmd)
	assert.True(t, c.busy)
	require.Len(t, c.entries, 1)
	assert.Equal(t, roleUser, c.entries[0].role)
	assert.Empty(t, c.textarea.Value())

	var answer answerMsg
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, sub := range batch {
		if a, ok := sub().(answerMsg); ok {
			answer = a
		}
	}
	require.NoError(t, answer.err)
	assert.Equal(t, "**4**", answer.text)

	m, renderCmd := c.Update(answer)
	c = m.(Chat)
	assert.False(t, c.busy)
	require.Len(t, c.entries, 2)
	assert.Equal(t, roleAssistant, c.entries[1].role)

	last, ok := c.lastAnswer()
	assert.True(t, ok)
	assert.Equal(t, "**4**", last)

	require.NotNil(t, renderCmd)
	rendered, ok := renderCmd().(markdownRenderedMsg)
	require.True(t, ok)
	assert.Equal(t, 1, rendered.index)
	assert.Contains(t, rendered.rendered, "4")
	assert.NotContains(t, rendered.rendered, "**")
}

func TestAnswerErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  answerMsg
		want string
	}{
		{"cancelled", answerMsg{text: "Error: context canceled", err: fmt.Errorf("call cancelled: %w", context.Canceled)}, "Cancelled."},
		{"recursion", answerMsg{text: "Error: tool recursion exceeded", err: assistant.ErrToolRecursionExceeded}, "Error: tool recursion exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestChat(t, testutil.NewMockProvider("test-model"))
			c.busy = true

			m, cmd := c.Update(tt.msg)
			c = m.(Chat)
			assert.Nil(t, cmd)
			assert.False(t, c.busy)
			require.Len(t, c.entries, 1)
			assert.Equal(t, roleSystem, c.entries[0].role)
			assert.Equal(t, tt.want, c.entries[0].content)
		})
	}
}

func TestCommands(t *testing.T) {
	p := testutil.NewMockProvider("test-model")
	c := newTestChat(t, p)

	def, err := tools.NewFunction("get_time", "current time", func(context.Context, struct{}) (string, error) {
		return "noon", nil
	})
	require.NoError(t, err)
	require.NoError(t, c.session.RegisterTools(def))

	c, _ = typeAndSend(t, c, "/tools time")
	require.Len(t, c.entries, 1)
	assert.Equal(t, "Tools: get_time", c.entries[0].content)

	c, _ = typeAndSend(t, c, "/tools xyz")
	assert.Equal(t, `No tool matches "xyz".`, c.entries[1].content)

	_, err = c.session.Call(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, c.session.Messages(), 3)

	c, _ = typeAndSend(t, c, "/reset")
	assert.Len(t, c.session.Messages(), 1)
	require.Len(t, c.entries, 1)
	assert.Equal(t, "Conversation reset.", c.entries[0].content)

	c, _ = typeAndSend(t, c, "/bogus")
	assert.Equal(t, "Unknown command: /bogus", c.entries[1].content)

	_, cmd := typeAndSend(t, c, "/quit")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestThinkingIsShownWhileBusy(t *testing.T) {
	c := newTestChat(t, testutil.NewMockProvider("test-model"))
	c.busy = true

	m, _ := c.Update(thinkingMsg("looking up the weather"))
	c = m.(Chat)
	assert.Equal(t, "looking up the weather", c.thinking)
	assert.Contains(t, c.View(), "looking up the weather")

	m, _ = c.Update(answerMsg{text: "sunny"})
	c = m.(Chat)
	assert.Empty(t, c.thinking)
}

func TestEnterIgnoredWhileBusy(t *testing.T) {
	c := newTestChat(t, testutil.NewMockProvider("test-model"))
	c.busy = true

	c, cmd := typeAndSend(t, c, "second question")
	assert.Nil(t, cmd)
	assert.Empty(t, c.entries)
	assert.Equal(t, "second question", c.textarea.Value())
}

func TestEscCancelsCall(t *testing.T) {
	c := newTestChat(t, testutil.NewMockProvider("test-model"))

	ctx, cancel := context.WithCancel(context.Background())
	c.busy = true
	c.cancel = cancel

	m, _ := c.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_ = m.(Chat)
	assert.True(t, errors.Is(ctx.Err(), context.Canceled))
}

// Package ui is a terminal chat front end for an assistant session.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"teros/assistant"
	"teros/config"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
)

type entry struct {
	role     string
	content  string
	rendered string
	at       time.Time
}

// Chat is the bubbletea model of the chat screen.
type Chat struct {
	session *assistant.Session
	logger  *slog.Logger

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	entries  []entry
	thinking string
	busy     bool
	cancel   context.CancelFunc
	showHelp bool
}

// NewChat returns the chat model for session.
func NewChat(session *assistant.Session) Chat {
	ta := textarea.New()
	ta.Placeholder = "Ask anything, /help for commands..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ThinkingStyle

	return Chat{
		session:  session,
		logger:   config.Logger().With("component", "ui"),
		viewport: viewport.New(0, 0),
		textarea: ta,
		spinner:  sp,
	}
}

// Run starts the chat and blocks until the user quits. Reasoning published
// on the session feed is forwarded to the program as it arrives.
func Run(session *assistant.Session) error {
	p := tea.NewProgram(NewChat(session), tea.WithAltScreen())

	unsubscribe := session.Feed().Subscribe(func(s string) {
		p.Send(thinkingMsg(s))
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}

func (c Chat) Init() tea.Cmd {
	return textarea.Blink
}

func (c Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height

		// title, blank line, thinking line, textarea (3) and status bar
		c.viewport.Width = c.width
		c.viewport.Height = max(c.height-7, 1)
		c.textarea.SetWidth(c.width)
		c.ready = true

		var cmds []tea.Cmd
		for i, e := range c.entries {
			if e.role == roleAssistant {
				cmds = append(cmds, renderCmd(i, e.content, c.width))
			}
		}
		c.refresh(true)
		return c, tea.Batch(cmds...)

	case tea.KeyMsg:
		return c.handleKey(msg)

	case thinkingMsg:
		c.thinking = string(msg)
		c.logger.Debug("reasoning received", "chars", len(msg))
		return c, nil

	case answerMsg:
		return c.handleAnswer(msg)

	case markdownRenderedMsg:
		if msg.index >= 0 && msg.index < len(c.entries) {
			c.entries[msg.index].rendered = msg.rendered
			c.refresh(false)
		}
		return c, nil

	case spinner.TickMsg:
		if !c.busy {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd
	}

	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return c, cmd
}

func (c Chat) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if c.showHelp {
		switch msg.String() {
		case "esc", "q", "alt+h":
			c.showHelp = false
		}
		return c, nil
	}

	switch msg.String() {
	case "ctrl+c", "alt+q":
		if c.cancel != nil {
			c.cancel()
		}
		return c, tea.Quit

	case "esc":
		if c.busy && c.cancel != nil {
			c.logger.Info("cancelling call")
			c.cancel()
		}
		return c, nil

	case "alt+h":
		c.showHelp = true
		return c, nil

	case "ctrl+y", "alt+y":
		if text, ok := c.lastAnswer(); ok {
			if err := clipboard.WriteAll(text); err != nil {
				c.logger.Warn("failed to copy answer", "error", err)
				c.addEntry(roleSystem, "Copy failed: "+err.Error())
			}
		}
		return c, nil

	case "pgup":
		c.viewport.PageUp()
		return c, nil

	case "pgdown":
		c.viewport.PageDown()
		return c, nil

	case "enter":
		input := strings.TrimSpace(c.textarea.Value())
		if input == "" {
			return c, nil
		}
		if strings.HasPrefix(input, "/") {
			c.textarea.Reset()
			return c.handleCommand(input)
		}
		if c.busy {
			return c, nil
		}
		c.textarea.Reset()
		return c.submit(input)
	}

	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return c, cmd
}

func (c Chat) submit(prompt string) (tea.Model, tea.Cmd) {
	c.addEntry(roleUser, prompt)
	c.busy = true
	c.thinking = ""

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.refresh(true)

	return c, tea.Batch(callCmd(ctx, c.session, prompt), c.spinner.Tick)
}

func callCmd(ctx context.Context, s *assistant.Session, prompt string) tea.Cmd {
	return func() tea.Msg {
		text, err := s.Call(ctx, prompt)
		return answerMsg{text: text, err: err}
	}
}

func renderCmd(index int, content string, width int) tea.Cmd {
	return func() tea.Msg {
		return markdownRenderedMsg{index: index, rendered: renderMarkdown(content, width)}
	}
}

func (c Chat) handleAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	c.busy = false
	c.thinking = ""
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	switch {
	case errors.Is(msg.err, context.Canceled):
		c.addEntry(roleSystem, "Cancelled.")
	case msg.err != nil:
		c.logger.Warn("call failed", "error", msg.err)
		c.addEntry(roleSystem, msg.text)
	default:
		c.addEntry(roleAssistant, msg.text)
		c.refresh(true)
		return c, renderCmd(len(c.entries)-1, msg.text, c.width)
	}
	c.refresh(true)
	return c, nil
}

func (c Chat) handleCommand(input string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		if c.cancel != nil {
			c.cancel()
		}
		return c, tea.Quit

	case "/reset":
		if c.busy {
			c.addEntry(roleSystem, "Wait for the current answer before resetting.")
			break
		}
		c.session.Reset()
		c.entries = nil
		c.addEntry(roleSystem, "Conversation reset.")

	case "/tools":
		names := matchTools(arg, c.session.Tools())
		switch {
		case len(names) == 0 && arg != "":
			c.addEntry(roleSystem, fmt.Sprintf("No tool matches %q.", arg))
		case len(names) == 0:
			c.addEntry(roleSystem, "No tools registered.")
		default:
			c.addEntry(roleSystem, "Tools: "+strings.Join(names, ", "))
		}

	case "/help":
		c.showHelp = true

	default:
		c.addEntry(roleSystem, "Unknown command: "+name)
	}

	c.refresh(true)
	return c, nil
}

// matchTools returns the tool names matching query, best match first. An
// empty query matches everything.
func matchTools(query string, names []string) []string {
	if query == "" {
		return names
	}
	matches := fuzzy.Find(query, names)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}

func (c *Chat) addEntry(role, content string) {
	c.entries = append(c.entries, entry{role: role, content: content, rendered: content, at: time.Now()})
}

func (c Chat) lastAnswer() (string, bool) {
	for i := len(c.entries) - 1; i >= 0; i-- {
		if c.entries[i].role == roleAssistant {
			return c.entries[i].content, true
		}
	}
	return "", false
}

func (c *Chat) refresh(gotoBottom bool) {
	if len(c.entries) == 0 {
		c.viewport.SetContent(DimStyle.Render("No messages yet. Start chatting!"))
		return
	}

	var b strings.Builder
	for _, e := range c.entries {
		timestamp := DimStyle.Render(e.at.Format("[15:04]"))
		switch e.role {
		case roleUser:
			b.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), e.rendered))
		case roleAssistant:
			fmt.Fprintf(&b, "%s %s\n%s\n\n", timestamp, AssistantStyle.Render("Teros"), e.rendered)
		default:
			fmt.Fprintf(&b, "%s %s\n\n", timestamp, DimStyle.Render(e.rendered))
		}
	}
	c.viewport.SetContent(b.String())
	if gotoBottom {
		c.viewport.GotoBottom()
	}
}

func formatUserMessage(timestamp, role, content string) string {
	bar := UserStyle.Render("┃")

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", bar, timestamp, role)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(&b, "%s %s\n", bar, line)
	}
	b.WriteString("\n")
	return b.String()
}

// statusLine fits the latest reasoning summary on one line.
func statusLine(thinking string, width int) string {
	line := strings.Join(strings.Fields(thinking), " ")
	if width <= 4 {
		return ""
	}
	return runewidth.Truncate(line, width-4, "…")
}

func (c Chat) View() string {
	if !c.ready {
		return "Loading Teros..."
	}
	if c.showHelp {
		return renderHelp(c.width, c.height)
	}

	title := TitleStyle.Render("Teros") + DimStyle.Render(" | "+c.session.Provider().GetDisplayName())
	if c.busy {
		title += " " + c.spinner.View()
	}

	thinking := ""
	if c.busy {
		thinking = ThinkingStyle.Render(statusLine(c.thinking, c.width))
	}

	status := StatusStyle.Render(FormatFooter(
		"Enter", "Send",
		"Alt+Enter", "New line",
		"Esc", "Cancel",
		"Ctrl+Y", "Copy",
		"Alt+H", "Help",
		"Alt+Q", "Quit",
	))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		c.viewport.View(),
		thinking,
		c.textarea.View(),
		status,
	)
}

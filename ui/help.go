package ui

import (
	"github.com/charmbracelet/lipgloss"
)

func renderHelp(width, height int) string {
	green := lipgloss.NewStyle().Bold(true).Foreground(successColor)
	blue := lipgloss.NewStyle().Foreground(accentColor)

	keys := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Keys"),
		"• Enter         Send message",
		"• Alt+Enter     New line",
		"• Esc           Cancel the running answer",
		"• Ctrl+Y        Copy last answer",
		"• PgUp/PgDown   Scroll",
		"• Alt+Q         Quit",
	)

	commands := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Commands"),
		"• /reset        Start a new conversation",
		"• /tools [q]    List tools, fuzzy filtered by q",
		"• /help         Show this help",
		"• /quit         Quit",
	)

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		green.Render("Teros - Help"),
		"",
		keys,
		"",
		commands,
		"",
		HelpStyle.Render("Esc to close"),
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(1, 2).
		Render(body)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

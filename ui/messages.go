package ui

// answerMsg carries the result of one Session.Call.
type answerMsg struct {
	text string
	err  error
}

// thinkingMsg is a reasoning summary forwarded from the session feed.
type thinkingMsg string

type markdownRenderedMsg struct {
	index    int
	rendered string
}

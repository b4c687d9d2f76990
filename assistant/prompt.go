package assistant

import (
	"fmt"
	"strings"
	"time"
)

// systemPrompt builds the message that seeds every conversation.
func systemPrompt(now time.Time, user, extra string) string {
	prompt := fmt.Sprintf(
		"Today is %s. You are Teros, a smart and helpful assistant. Engage intelligently with user %s.",
		now.Format("Monday, January 2, 2006"), user,
	)
	if extra = strings.TrimSpace(extra); extra != "" {
		prompt += "\n" + extra
	}
	return prompt
}

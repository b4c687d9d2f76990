package guardian

import "teros/model"

// EmergencyKeep is the log length Truncate reduces to.
const EmergencyKeep = 10

// Truncate drops the oldest messages after the leading system message until
// at most keep remain. System text messages are kept, a tool result is never
// left without its call, and the last user message is never dropped. Once
// anything is dropped the log resumes on a user message.
//
// When the history before the last user message is gone and the log is
// still too long, the oldest tool calls of the current turn go next, along
// with their results. The newest call is always kept, so the result can
// still exceed keep. The input slice is not modified.
func Truncate(log []model.Message, keep int) []model.Message {
	out := append([]model.Message(nil), log...)

	start := 0
	if len(out) > 0 && out[0].IsText(model.RoleSystem) {
		start = 1
	}

	dropped := false
	i := start
	for i < len(out) {
		if out[i].IsText(model.RoleSystem) {
			i++
			continue
		}
		if i == LastUserIndex(out) {
			break
		}
		if len(out) <= keep && (!dropped || out[i].IsText(model.RoleUser)) {
			break
		}
		out = dropWithResults(out, i)
		dropped = true
	}

	if len(out) > keep {
		out = truncateToolChain(out, keep)
	}
	return out
}

// truncateToolChain drops messages after the last user message, oldest
// first, up to the newest tool call and the reasoning right before it.
func truncateToolChain(out []model.Message, keep int) []model.Message {
	newest := lastToolCallIndex(out)
	i := LastUserIndex(out) + 1
	for len(out) > keep && i < newest {
		m := out[i]
		if m.IsText(model.RoleSystem) {
			i++
			continue
		}
		if m.Kind == model.KindReasoning && leadsTo(out, i, newest) {
			break
		}
		before := len(out)
		out = dropWithResults(out, i)
		newest -= before - len(out)
	}
	return out
}

// dropWithResults removes out[i] and the tool results directly after it.
func dropWithResults(out []model.Message, i int) []model.Message {
	out = append(out[:i], out[i+1:]...)
	for i < len(out) && out[i].Kind == model.KindToolResult {
		out = append(out[:i], out[i+1:]...)
	}
	return out
}

// leadsTo reports whether only reasoning sits between out[i] and out[target].
func leadsTo(out []model.Message, i, target int) bool {
	for ; i < target; i++ {
		if out[i].Kind != model.KindReasoning {
			return false
		}
	}
	return true
}

func lastToolCallIndex(log []model.Message) int {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].Kind == model.KindToolCall {
			return i
		}
	}
	return -1
}

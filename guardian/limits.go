package guardian

import "strings"

const (
	// DefaultThreshold applies when the model is blank or unknown.
	DefaultThreshold = 85000

	thresholdRatio = 0.65
)

// contextWindows maps known model ids to their context size in tokens.
var contextWindows = map[string]int{
	"grok-4-fast-reasoning":       2000000,
	"grok-4-fast-non-reasoning":   2000000,
	"grok-4-1-fast-reasoning":     2000000,
	"grok-4-1-fast-non-reasoning": 2000000,
	"grok-code-fast-1":            256000,

	"gpt-5":             200000,
	"gpt-5-mini":        200000,
	"gpt-5-nano":        200000,
	"gpt-5-chat-latest": 200000,
	"gpt-5-codex":       200000,

	"gpt-4.1":      128000,
	"gpt-4.1-mini": 128000,
	"gpt-4.1-nano": 128000,
	"o4-mini":      128000,
	"o3":           200000,
	"o3-mini":      200000,
	"o3-pro":       200000,
	"o1":           128000,
	"o1-mini":      128000,
	"o1-preview":   128000,
	"o1-pro":       128000,

	"gpt-4o":              128000,
	"gpt-4o-mini":         128000,
	"chatgpt-4o-latest":   128000,
	"gpt-4-turbo":         128000,
	"gpt-4-turbo-preview": 128000,
	"gpt-4-0125-preview":  128000,
	"gpt-4-1106-preview":  128000,
	"gpt-4":               8192,
	"gpt-4-32k":           32768,
	"gpt-3.5-turbo":       16385,
	"gpt-3.5-turbo-0301":  4096,
	"codex-mini-latest":   8192,

	"claude-opus-4":     200000,
	"claude-sonnet-4":   200000,
	"claude-3-7-sonnet": 200000,
	"claude-3-5-sonnet": 200000,
	"claude-3-5-haiku":  200000,

	"llama3.1": 128000,
	"llama3.2": 128000,
	"llama3.3": 128000,
	"qwen":     32768,
}

// familyWindows is checked in order, so more specific prefixes come first.
var familyWindows = []struct {
	prefix string
	tokens int
}{
	{"grok-code", 256000},
	{"grok-4", 200000},
	{"gpt-5", 200000},
	{"o3", 200000},
	{"gpt-4o", 128000},
	{"gpt-4.1", 128000},
	{"gpt-4-turbo", 128000},
	{"o1", 128000},
	{"o4", 128000},
	{"gpt-4", 8192},
	{"gpt-3.5", 16385},
	{"claude", 200000},
}

// ContextWindow returns the context size of modelName in tokens, or false
// when the model is unknown. Exact ids win over the longest known id
// contained in the name, which wins over the family prefix table.
func ContextWindow(modelName string) (int, bool) {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" {
		return 0, false
	}

	if tokens, ok := contextWindows[name]; ok {
		return tokens, true
	}

	best := ""
	for id := range contextWindows {
		if !strings.Contains(name, id) {
			continue
		}
		// ties broken lexically so map order never matters
		if len(id) > len(best) || (len(id) == len(best) && id < best) {
			best = id
		}
	}
	if best != "" {
		return contextWindows[best], true
	}

	for _, f := range familyWindows {
		if strings.HasPrefix(name, f.prefix) {
			return f.tokens, true
		}
	}
	return 0, false
}

// Threshold returns the input token count at which a conversation for
// modelName gets summarized.
func Threshold(modelName string) int {
	tokens, ok := ContextWindow(modelName)
	if !ok {
		return DefaultThreshold
	}
	return thresholdFor(tokens)
}

func thresholdFor(contextWindow int) int {
	return int(float64(contextWindow) * thresholdRatio)
}

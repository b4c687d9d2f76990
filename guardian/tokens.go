package guardian

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"teros/model"
)

// perMessageOverhead approximates the role and framing tokens a provider adds
// around every message.
const perMessageOverhead = 4

// TokenEstimator counts the tokens a message log will occupy. It is used
// when the provider did not report input usage.
type TokenEstimator interface {
	Estimate(messages []model.Message) int
}

// CharEstimator assumes four characters per token.
type CharEstimator struct{}

func (CharEstimator) Estimate(messages []model.Message) int {
	total := 0
	for _, m := range messages {
		total += len(messageText(m))/4 + perMessageOverhead
	}
	return total
}

// TiktokenEstimator counts with the BPE encoding of the model, falling back
// to cl100k_base and finally to CharEstimator when no encoding can be loaded.
type TiktokenEstimator struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

func NewTiktokenEstimator(modelName string) *TiktokenEstimator {
	return &TiktokenEstimator{model: modelName}
}

func (e *TiktokenEstimator) Estimate(messages []model.Message) int {
	e.once.Do(e.load)
	if e.enc == nil {
		return CharEstimator{}.Estimate(messages)
	}

	total := 0
	for _, m := range messages {
		total += len(e.enc.Encode(messageText(m), nil, nil)) + perMessageOverhead
	}
	return total
}

func (e *TiktokenEstimator) load() {
	if enc, err := tiktoken.EncodingForModel(e.model); err == nil {
		e.enc = enc
		return
	}
	if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		e.enc = enc
	}
}

func messageText(m model.Message) string {
	switch m.Kind {
	case model.KindToolCall:
		if m.ToolCall != nil {
			return m.ToolCall.Name + m.ToolCall.Arguments
		}
	case model.KindToolResult:
		if m.ToolResult != nil {
			return m.ToolResult.Output
		}
	case model.KindReasoning:
		if m.Reasoning != nil {
			return strings.Join(m.Reasoning.Summary, "\n")
		}
	}
	return m.Text
}

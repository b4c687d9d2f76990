// Package guardian keeps a conversation inside the model's context window by
// summarizing it once input usage crosses a threshold.
package guardian

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"teros/model"
)

const (
	// SummaryInstruction is sent as a system message ahead of the log.
	SummaryInstruction = "Summarize the previous conversation as concisely as possible. " +
		"Preserve important context, decisions made, and unresolved tasks. " +
		"Do NOT include token usage stats or meta-information. " +
		"Your output MUST be only the summary text."

	// SummaryPrefix heads the system message that replaces the old log.
	SummaryPrefix = "Summary of earlier conversation:\n"
)

// Guardian decides when a conversation must be summarized and performs the
// summarization through the session's own provider.
type Guardian struct {
	threshold int
	estimator TokenEstimator
	logger    *slog.Logger

	mu sync.Mutex
	// usage reported right after the last summarization
	acted    model.UsageSnapshot
	hasActed bool
}

type Option func(*Guardian)

// WithContextWindow replaces the table lookup with an explicit context size.
// Values <= 0 are ignored.
func WithContextWindow(tokens int) Option {
	return func(g *Guardian) {
		if tokens > 0 {
			g.threshold = thresholdFor(tokens)
		}
	}
}

func WithEstimator(e TokenEstimator) Option {
	return func(g *Guardian) {
		g.estimator = e
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Guardian) {
		g.logger = l
	}
}

// New returns a Guardian for modelName.
func New(modelName string, opts ...Option) *Guardian {
	g := &Guardian{
		threshold: Threshold(modelName),
		estimator: NewTiktokenEstimator(modelName),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "guardian")
	return g
}

func (g *Guardian) Threshold() int {
	return g.threshold
}

// InputTokens returns the reported input usage, or an estimate of log when
// the provider reported none.
func (g *Guardian) InputTokens(usage model.UsageSnapshot, log []model.Message) int64 {
	if usage.InputTokens > 0 {
		return usage.InputTokens
	}
	return int64(g.estimator.Estimate(log))
}

// Exceeded reports whether the conversation must be summarized.
func (g *Guardian) Exceeded(usage model.UsageSnapshot, log []model.Message) bool {
	return g.InputTokens(usage, log) > int64(g.threshold)
}

// Check summarizes log when the provider's last usage crosses the threshold.
// It returns the log to keep and whether it was rebuilt. Failures leave the
// log untouched.
func (g *Guardian) Check(ctx context.Context, p model.Provider, log []model.Message) ([]model.Message, bool) {
	if len(log) == 0 {
		return log, false
	}

	usage := p.Usage()
	if g.stale(usage) {
		return log, false
	}
	tokens := g.InputTokens(usage, log)
	if tokens <= int64(g.threshold) {
		return log, false
	}
	g.logger.Info("context threshold exceeded, summarizing",
		"input_tokens", tokens, "threshold", g.threshold, "messages", len(log))

	summary, err := g.summarize(ctx, p, log)
	if err != nil {
		g.logger.Error("summarization failed", "error", err)
		return log, false
	}
	if summary == "" {
		g.logger.Warn("summarization returned no text")
		return log, false
	}

	g.mu.Lock()
	g.acted, g.hasActed = p.Usage(), true
	g.mu.Unlock()

	rebuilt := Rebuild(log, summary, p)
	g.logger.Info("conversation summarized", "before", len(log), "after", len(rebuilt))
	return rebuilt, true
}

// stale reports whether usage is the snapshot left by the summarization
// request itself, which says nothing about the rebuilt log.
func (g *Guardian) stale(usage model.UsageSnapshot) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hasActed && usage.InputTokens > 0 && usage == g.acted
}

func (g *Guardian) summarize(ctx context.Context, p model.Provider, log []model.Message) (string, error) {
	request := make([]model.Message, 0, len(log)+1)
	request = append(request, p.BuildSystemMessage(SummaryInstruction))
	request = append(request, log...)

	items, err := p.Send(ctx, request)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, item := range items {
		if item.Type == model.ItemText && item.Text != "" {
			parts = append(parts, item.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// Rebuild replaces log with its leading system message, a system message
// carrying summary, and the most recent user message.
func Rebuild(log []model.Message, summary string, p model.Provider) []model.Message {
	rebuilt := make([]model.Message, 0, 3)
	if len(log) > 0 && log[0].IsText(model.RoleSystem) {
		rebuilt = append(rebuilt, log[0])
	}
	rebuilt = append(rebuilt, p.BuildSystemMessage(SummaryPrefix+summary))
	if i := LastUserIndex(log); i >= 0 {
		rebuilt = append(rebuilt, log[i])
	}
	return rebuilt
}

// LastUserIndex returns the index of the last user text message, or -1.
func LastUserIndex(log []model.Message) int {
	for i := len(log) - 1; i >= 0; i-- {
		if log[i].IsText(model.RoleUser) {
			return i
		}
	}
	return -1
}

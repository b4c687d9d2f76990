package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"teros/attachment"
	"teros/guardian"
	"teros/model"
	"teros/tools"
)

type callOptions struct {
	system string
}

// CallOption customizes a single Call.
type CallOption func(*callOptions)

// WithSystemOverride appends a one-shot system message before the user
// prompt.
func WithSystemOverride(text string) CallOption {
	return func(o *callOptions) {
		o.system = text
	}
}

// Call sends prompt and drives the tool-call loop until the model answers.
//
// The returned string is never empty. Provider failures are reported as
// "Error: ..." text with a nil error; a non-nil error means the turn was
// refused, cancelled or hit the tool recursion limit.
func (s *Session) Call(ctx context.Context, prompt string, opts ...CallOption) (string, error) {
	if s.closed.Load() {
		return errorText(ErrSessionClosed), ErrSessionClosed
	}
	if strings.TrimSpace(prompt) == "" {
		return errorText(ErrEmptyPrompt), ErrEmptyPrompt
	}
	if !s.busy.CompareAndSwap(false, true) {
		return errorText(ErrSessionBusy), ErrSessionBusy
	}
	defer s.busy.Store(false)

	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if o.system != "" {
		s.log = append(s.log, s.provider.BuildSystemMessage(o.system))
	}
	s.log = append(s.log, s.provider.BuildUserMessage(prompt))

	t := &turn{s: s, ctx: ctx}
	answer, err := t.run()

	if ctx.Err() == nil {
		s.checkContext(ctx)
	}
	if err != nil {
		return answer, err
	}
	if answer == "" {
		return NoResponse, nil
	}
	return answer, nil
}

// turn is the state of one Call. It runs with s.mu held.
type turn struct {
	s     *Session
	ctx   context.Context
	texts []string
	round *attachment.Round
}

func (t *turn) run() (string, error) {
	s := t.s
	defer t.finish()

	for depth := 0; ; depth++ {
		if err := t.ctx.Err(); err != nil {
			return t.cancelled(err)
		}

		items, err := t.send()

		// files uploaded for the previous round-trip are no longer needed
		t.closeRound()
		s.log = stripTransient(s.log)

		if ctxErr := t.ctx.Err(); err != nil && ctxErr != nil && errors.Is(err, ctxErr) {
			return t.cancelled(ctxErr)
		}
		if err != nil {
			s.logger.Error("provider request failed", "depth", depth, "error", err)
			return errorText(err), nil
		}

		t.round = s.attachments.Round()

		executed := false
		var pending []model.Message
		for _, item := range items {
			switch item.Type {
			case model.ItemText:
				if item.Text == "" {
					continue
				}
				t.texts = append(t.texts, item.Text)
				s.log = append(s.log, s.provider.BuildAssistantMessage(item.Text))

			case model.ItemReasoning:
				if item.Reasoning == nil {
					continue
				}
				for _, summary := range item.Reasoning.Summary {
					s.feed.Publish(summary)
				}
				msg := model.NewReasoningMessage(*item.Reasoning)
				msg.Transient = true
				pending = append(pending, msg)

			case model.ItemToolCall:
				if item.ToolCall == nil {
					continue
				}
				if depth >= maxToolDepth {
					s.logger.Warn("tool recursion limit reached", "depth", depth, "tool", item.ToolCall.Name)
					return errorText(ErrToolRecursionExceeded), ErrToolRecursionExceeded
				}
				if err := t.ctx.Err(); err != nil {
					return t.cancelled(err)
				}

				s.log = append(s.log, pending...)
				pending = nil

				res := t.execute(*item.ToolCall)
				executed = true

				if !res.ReturnToModel && !res.Failed() {
					s.logger.Debug("tool ended the turn", "tool", res.Name)
					return t.final(res), nil
				}
			}
		}

		if !executed {
			return strings.Join(t.texts, ""), nil
		}
	}
}

// execute runs one tool call and appends the call, its result and any
// uploaded files to the log.
func (t *turn) execute(call model.ToolCall) *model.ToolCallResult {
	s := t.s

	start := time.Now()
	res := s.registry.Execute(t.ctx, call)
	if res.Failed() {
		s.logger.Warn("tool call failed", "tool", call.Name, "call_id", call.ID, "result", res.Result)
	} else {
		s.logger.Debug("tool call executed", "tool", call.Name, "call_id", call.ID, "duration", time.Since(start))
	}

	output, err := model.SerializeResult(res.Result)
	if err != nil {
		res = tools.ErrorResult(call.Name, fmt.Sprintf("failed to serialize result: %v", err))
		output, _ = model.SerializeResult(res.Result)
	}

	s.log = append(s.log,
		model.NewToolCallMessage(call),
		model.NewToolResultMessage(model.ToolResult{CallID: call.ID, Name: call.Name, Output: output}),
	)

	if len(res.Files) > 0 {
		s.log = append(s.log, t.attach(call.ID, res.Files))
	}
	return res
}

// attach uploads files for the next round-trip and returns the transient
// system message listing them. Upload failures are noted in the listing.
func (t *turn) attach(callID string, files []model.FileAttachment) model.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "The function call (id: %s) returned the following file(s) for analysis:", callID)

	var refs []model.AttachmentRef
	for _, f := range files {
		id, err := t.round.Upload(t.ctx, f)
		if err != nil {
			t.s.logger.Warn("failed to attach file", "filename", f.Filename, "error", err)
			fmt.Fprintf(&b, "\n- [ERROR] failed to attach: %s", f.Filename)
			continue
		}
		contentType := f.ContentType
		if contentType == "" {
			contentType = attachment.DetectContentType(f.Filename, f.Data)
		}
		refs = append(refs, model.AttachmentRef{
			Filename:    f.Filename,
			ContentType: contentType,
			RemoteID:    id,
			Data:        f.Data,
		})
		fmt.Fprintf(&b, "\n- %s (%s)", f.Filename, id)
	}

	msg := model.NewAttachmentMessage(b.String(), refs)
	msg.Transient = true
	return msg
}

// send issues one round-trip. A request rejected for length is retried on
// an emergency-truncated log, as long as truncation shrinks it.
func (t *turn) send() ([]model.OutputItem, error) {
	s := t.s
	for attempt := 0; ; attempt++ {
		items, err := s.roundTrip(t.ctx, s.log)
		if err == nil {
			return items, nil
		}
		if !errors.Is(err, model.ErrContextLengthExceeded) || attempt >= maxContextRetries {
			return nil, err
		}
		if ctxErr := t.ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		before := len(s.log)
		s.log = guardian.Truncate(s.log, guardian.EmergencyKeep)
		if len(s.log) >= before {
			s.logger.Warn("context length exceeded, nothing left to truncate", "messages", before)
			return nil, err
		}
		s.logger.Warn("context length exceeded, truncated log",
			"attempt", attempt+1, "before", before, "after", len(s.log))
	}
}

// final renders the answer of a turn ended by a tool.
func (t *turn) final(res *model.ToolCallResult) string {
	raw, err := model.SerializeResult(res.Result)
	if err != nil {
		raw = fmt.Sprint(res.Result)
	}
	if len(t.texts) == 0 {
		return raw
	}
	return strings.Join(t.texts, "") + "\n" + raw
}

func (t *turn) cancelled(err error) (string, error) {
	t.s.logger.Info("call cancelled", "error", err)
	return errorText(err), fmt.Errorf("call cancelled: %w", err)
}

func (t *turn) closeRound() {
	if t.round != nil {
		t.round.Close(t.ctx)
		t.round = nil
	}
}

func (t *turn) finish() {
	t.closeRound()
	t.s.log = stripTransient(t.s.log)
}

// roundTrip sends log to the provider. The request is detached from ctx's
// cancellation and bounded by the request timeout.
func (s *Session) roundTrip(ctx context.Context, log []model.Message) ([]model.OutputItem, error) {
	reqCtx, cancel := s.requestContext(ctx)
	defer cancel()
	return s.provider.Send(reqCtx, log)
}

func (s *Session) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if s.requestTimeout > 0 {
		return context.WithTimeout(ctx, s.requestTimeout)
	}
	return context.WithCancel(ctx)
}

// checkContext lets the guardian summarize the log once the turn is over.
func (s *Session) checkContext(ctx context.Context) {
	reqCtx, cancel := s.requestContext(ctx)
	defer cancel()
	if log, summarized := s.guardian.Check(reqCtx, s.provider, s.log); summarized {
		s.log = log
	}
}

func stripTransient(log []model.Message) []model.Message {
	out := log[:0]
	for _, m := range log {
		if !m.Transient {
			out = append(out, m)
		}
	}
	return out
}

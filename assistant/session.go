// Package assistant runs conversations: it owns the message log, drives the
// tool-call loop against a model.Provider, and keeps the log inside the
// model's context window.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"os/user"
	"sync"
	"sync/atomic"
	"time"

	"teros/attachment"
	"teros/config"
	"teros/guardian"
	"teros/model"
	"teros/provider"
	"teros/tools"
)

// Session is one independent conversation. Calls on a Session are not
// reentrant; a concurrent Call fails with ErrSessionBusy.
type Session struct {
	provider    model.Provider
	registry    *tools.Registry
	guardian    *guardian.Guardian
	attachments *attachment.Manager
	feed        *Feed
	logger      *slog.Logger

	clock          func() time.Time
	prompt         string
	userName       string
	requestTimeout time.Duration

	busy   atomic.Bool
	closed atomic.Bool

	mu  sync.Mutex
	log []model.Message
}

type Option func(*Session)

// WithSystemPrompt appends text to the built-in system message.
func WithSystemPrompt(text string) Option {
	return func(s *Session) {
		s.prompt = text
	}
}

// WithUserName sets the name the assistant addresses. It defaults to the OS
// user.
func WithUserName(name string) Option {
	return func(s *Session) {
		s.userName = name
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.clock = now
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

func WithFeed(f *Feed) Option {
	return func(s *Session) {
		s.feed = f
	}
}

func WithGuardian(g *guardian.Guardian) Option {
	return func(s *Session) {
		s.guardian = g
	}
}

// WithAttachments replaces the attachment manager. By default files are
// uploaded to the provider's file store, or kept inline when it has none.
func WithAttachments(m *attachment.Manager) Option {
	return func(s *Session) {
		s.attachments = m
	}
}

// WithRequestTimeout bounds every provider round-trip.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.requestTimeout = d
	}
}

// CreateSession builds the provider selected by cfg and returns a session
// on top of it.
func CreateSession(cfg provider.Config, opts ...Option) (*Session, error) {
	p, err := provider.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	if cfg.RequestTimeout > 0 {
		opts = append([]Option{WithRequestTimeout(cfg.RequestTimeout)}, opts...)
	}
	return NewSession(p, opts...), nil
}

// NewSession returns a session talking to p.
func NewSession(p model.Provider, opts ...Option) *Session {
	s := &Session{
		provider:       p,
		clock:          time.Now,
		requestTimeout: config.DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = config.Logger()
	}
	base := s.logger
	s.logger = base.With("component", "assistant", "model", p.GetModel())

	if s.userName == "" {
		s.userName = osUserName()
	}
	if s.feed == nil {
		s.feed = NewFeed()
	}
	if s.guardian == nil {
		s.guardian = guardian.New(p.GetModel(), guardian.WithLogger(base))
	}
	if s.attachments == nil {
		var store model.FileStore = attachment.NewInlineStore()
		if fs, ok := p.(model.FileStore); ok {
			store = fs
		}
		s.attachments = attachment.NewManager(store, attachment.WithLogger(base))
	}

	s.registry, _ = tools.NewRegistry()
	s.log = []model.Message{s.seed()}
	return s
}

func (s *Session) seed() model.Message {
	return s.provider.BuildSystemMessage(systemPrompt(s.clock(), s.userName, s.prompt))
}

// RegisterTools adds callable tools and re-announces the full set to the
// provider. Duplicate names are rejected.
func (s *Session) RegisterTools(defs ...tools.Definition) error {
	if err := s.registry.Register(defs...); err != nil {
		return err
	}
	s.provider.Functions(s.registry.Tools())
	return nil
}

// Tools returns the registered tool names in registration order.
func (s *Session) Tools() []string {
	return s.registry.Names()
}

// Reset clears the conversation and re-seeds the system message.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = []model.Message{s.seed()}
}

// Dispose releases remote attachments. Calls made afterwards fail with
// ErrSessionClosed.
func (s *Session) Dispose(ctx context.Context) {
	if s.closed.Swap(true) {
		return
	}
	s.attachments.Dispose(ctx)
}

// Messages returns a copy of the persisted conversation log.
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, 0, len(s.log))
	for _, m := range s.log {
		if !m.Transient {
			out = append(out, m)
		}
	}
	return out
}

func (s *Session) Feed() *Feed {
	return s.feed
}

// Usage returns the provider's usage for the last round-trip.
func (s *Session) Usage() model.UsageSnapshot {
	return s.provider.Usage()
}

func (s *Session) Provider() model.Provider {
	return s.provider
}

func osUserName() string {
	if u, err := user.Current(); err == nil {
		if u.Name != "" {
			return u.Name
		}
		return u.Username
	}
	return "user"
}

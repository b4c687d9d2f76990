// Package attachment manages the files tool calls return: it uploads them to
// the provider's file store for one round-trip and guarantees their deletion.
package attachment

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"teros/model"
)

// cleanupTimeout bounds each deletion. Cleanup runs detached from the turn's
// context so a cancelled turn still removes its files.
const cleanupTimeout = 30 * time.Second

// Ledger persists the ids of uploaded files so uploads orphaned by a crash
// can be swept on the next start.
type Ledger interface {
	Record(ctx context.Context, scope, remoteID, filename string) error
	Remove(ctx context.Context, remoteID string) error
	Pending(ctx context.Context, scope string) ([]string, error)
}

// Manager uploads attachments through a file store and tracks them per
// round-trip.
type Manager struct {
	store  model.FileStore
	ledger Ledger
	scope  string
	logger *slog.Logger

	mu     sync.Mutex
	rounds map[*Round]struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithLedger records uploads in l under scope, usually the provider id.
func WithLedger(l Ledger, scope string) Option {
	return func(m *Manager) {
		m.ledger = l
		m.scope = scope
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// NewManager returns a Manager backed by store.
func NewManager(store model.FileStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: slog.Default(),
		rounds: make(map[*Round]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "attachments")
	return m
}

// Round opens a scratch scope for one tool round-trip. Callers must defer
// Close on the returned Round.
func (m *Manager) Round() *Round {
	r := &Round{m: m}
	m.mu.Lock()
	m.rounds[r] = struct{}{}
	m.mu.Unlock()
	return r
}

// Sweep deletes files recorded by a previous process that never got cleaned
// up. It returns the number of files deleted.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.ledger == nil {
		return 0
	}
	ids, err := m.ledger.Pending(ctx, m.scope)
	if err != nil {
		m.logger.Warn("failed to list orphaned attachments", "error", err)
		return 0
	}

	deleted := 0
	for _, id := range ids {
		if m.delete(ctx, id) {
			deleted++
		}
	}
	if deleted > 0 {
		m.logger.Info("swept orphaned attachments", "count", deleted)
	}
	return deleted
}

// Dispose closes every round that is still open.
func (m *Manager) Dispose(ctx context.Context) {
	m.mu.Lock()
	open := make([]*Round, 0, len(m.rounds))
	for r := range m.rounds {
		open = append(open, r)
	}
	m.mu.Unlock()

	for _, r := range open {
		r.Close(ctx)
	}
}

func (m *Manager) delete(ctx context.Context, id string) bool {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := m.store.Delete(ctx, id); err != nil {
		m.logger.Warn("failed to delete attachment", "remote_id", id, "error", err)
		return false
	}
	if m.ledger != nil {
		if err := m.ledger.Remove(ctx, id); err != nil {
			m.logger.Warn("failed to update attachment ledger", "remote_id", id, "error", err)
		}
	}
	return true
}

func (m *Manager) forget(r *Round) {
	m.mu.Lock()
	delete(m.rounds, r)
	m.mu.Unlock()
}

// Round tracks the files uploaded during one tool round-trip.
type Round struct {
	m *Manager

	mu     sync.Mutex
	ids    []string
	closed bool
}

// Upload stores the attachment in the provider's file store and returns its
// remote id. The id is deleted when the round is closed.
func (r *Round) Upload(ctx context.Context, f model.FileAttachment) (string, error) {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return "", fmt.Errorf("upload %s: round already closed", f.Filename)
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = DetectContentType(f.Filename, f.Data)
	}

	id, err := r.m.store.Upload(ctx, f.Data, f.Filename, contentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", f.Filename, err)
	}

	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()

	if r.m.ledger != nil {
		if err := r.m.ledger.Record(ctx, r.m.scope, id, f.Filename); err != nil {
			r.m.logger.Warn("failed to record attachment", "remote_id", id, "error", err)
		}
	}
	r.m.logger.Debug("uploaded attachment", "filename", f.Filename, "remote_id", id, "bytes", len(f.Data))
	return id, nil
}

// IDs returns the remote ids uploaded in this round.
func (r *Round) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

// Close deletes every file uploaded in this round. Failures are logged and
// never returned. Close is idempotent.
func (r *Round) Close(ctx context.Context) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	ids := r.ids
	r.ids = nil
	r.mu.Unlock()

	for _, id := range ids {
		r.m.delete(ctx, id)
	}
	r.m.forget(r)
}

// DetectContentType guesses a MIME type from the file extension, then from
// the content.
func DetectContentType(filename string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

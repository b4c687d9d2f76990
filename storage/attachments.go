package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// PendingAttachment is a ledger row for a file that was uploaded to a
// provider and not yet deleted.
type PendingAttachment struct {
	ID         string
	Scope      string
	RemoteID   string
	Filename   string
	UploadedAt time.Time
}

// AttachmentLedger records provider-side uploads in sqlite so files orphaned
// by a crash can be deleted on the next start.
type AttachmentLedger struct {
	db *sql.DB
}

// NewAttachmentLedger opens (or creates) attachments.db in dataDir.
func NewAttachmentLedger(dataDir string) (*AttachmentLedger, error) {
	return OpenAttachmentLedger(filepath.Join(dataDir, "attachments.db"))
}

// OpenAttachmentLedger opens the ledger at an explicit sqlite DSN.
func OpenAttachmentLedger(dsn string) (*AttachmentLedger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ledger := &AttachmentLedger{db: db}
	if err := ledger.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return ledger, nil
}

func (l *AttachmentLedger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attachments (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL,
		remote_id TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		uploaded_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_attachments_scope ON attachments(scope);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Record adds an uploaded file to the ledger.
func (l *AttachmentLedger) Record(ctx context.Context, scope, remoteID, filename string) error {
	query := `
	INSERT INTO attachments (id, scope, remote_id, filename, uploaded_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(remote_id) DO UPDATE SET
		scope = excluded.scope,
		filename = excluded.filename,
		uploaded_at = excluded.uploaded_at
	`

	_, err := l.db.ExecContext(ctx, query, uuid.NewString(), scope, remoteID, filename, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record attachment %s: %w", remoteID, err)
	}
	return nil
}

// Remove drops a deleted file from the ledger. Unknown ids are ignored.
func (l *AttachmentLedger) Remove(ctx context.Context, remoteID string) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM attachments WHERE remote_id = ?`, remoteID); err != nil {
		return fmt.Errorf("failed to remove attachment %s: %w", remoteID, err)
	}
	return nil
}

// Pending returns the remote ids still recorded under scope, oldest first.
func (l *AttachmentLedger) Pending(ctx context.Context, scope string) ([]string, error) {
	rows, err := l.List(ctx, scope)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.RemoteID
	}
	return ids, nil
}

// List returns the ledger rows recorded under scope, oldest first.
func (l *AttachmentLedger) List(ctx context.Context, scope string) ([]PendingAttachment, error) {
	query := `
	SELECT id, scope, remote_id, filename, uploaded_at
	FROM attachments
	WHERE scope = ?
	ORDER BY uploaded_at ASC
	`

	rows, err := l.db.QueryContext(ctx, query, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	var result []PendingAttachment
	for rows.Next() {
		var p PendingAttachment
		if err := rows.Scan(&p.ID, &p.Scope, &p.RemoteID, &p.Filename, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (l *AttachmentLedger) Close() error {
	return l.db.Close()
}

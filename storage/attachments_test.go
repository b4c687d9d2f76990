package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentLedger(t *testing.T) {
	ctx := context.Background()

	ledger, err := NewAttachmentLedger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	require.NoError(t, ledger.Record(ctx, "openai", "file-1", "report.pdf"))
	require.NoError(t, ledger.Record(ctx, "openai", "file-2", "chart.png"))
	require.NoError(t, ledger.Record(ctx, "grok", "file-x", "notes.txt"))

	ids, err := ledger.Pending(ctx, "openai")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"file-1", "file-2"}, ids)

	require.NoError(t, ledger.Remove(ctx, "file-1"))
	require.NoError(t, ledger.Remove(ctx, "never-recorded"))

	rows, err := ledger.List(ctx, "openai")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "file-2", rows[0].RemoteID)
	assert.Equal(t, "chart.png", rows[0].Filename)
	assert.NotEmpty(t, rows[0].ID)

	ids, err = ledger.Pending(ctx, "grok")
	require.NoError(t, err)
	assert.Equal(t, []string{"file-x"}, ids)
}

func TestAttachmentLedgerRecordIsIdempotent(t *testing.T) {
	ctx := context.Background()

	ledger, err := NewAttachmentLedger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })

	require.NoError(t, ledger.Record(ctx, "openai", "file-1", "a.txt"))
	require.NoError(t, ledger.Record(ctx, "openai", "file-1", "b.txt"))

	rows, err := ledger.List(ctx, "openai")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b.txt", rows[0].Filename)
}

func TestAttachmentLedgerSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ledger, err := NewAttachmentLedger(dir)
	require.NoError(t, err)
	require.NoError(t, ledger.Record(ctx, "openai", "file-9", "dump.bin"))
	require.NoError(t, ledger.Close())

	reopened, err := NewAttachmentLedger(dir)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	ids, err := reopened.Pending(ctx, "openai")
	require.NoError(t, err)
	assert.Equal(t, []string{"file-9"}, ids)
}

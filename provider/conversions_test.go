package provider

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"teros/model"
)

func TestParseToolArguments(t *testing.T) {
	tests := []struct {
		in   string
		want map[string]any
	}{
		{`{"a":1}`, map[string]any{"a": float64(1)}},
		{``, map[string]any{}},
		{`not json`, map[string]any{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseToolArguments(tt.in), tt.in)
	}
}

func TestRawArguments(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(rawArguments(`{"a":1}`)))
	assert.Equal(t, `{}`, string(rawArguments(``)))
	assert.Equal(t, `{}`, string(rawArguments(`[1,2]`)))
	assert.Equal(t, `{}`, string(rawArguments(`{broken`)))
}

func TestIsTextLike(t *testing.T) {
	tests := map[string]bool{
		"text/plain":               true,
		"text/csv; charset=utf-8":  true,
		"application/json":         true,
		"application/vnd.api+json": true,
		"application/pdf":          false,
		"image/png":                false,
		"application/octet-stream": false,
	}
	for ct, want := range tests {
		if got := isTextLike(ct); got != want {
			t.Errorf("isTextLike(%q) = %v, want %v", ct, got, want)
		}
	}
}

func TestInlineAttachmentText(t *testing.T) {
	pdf := inlineAttachmentText(model.AttachmentRef{Filename: "a.pdf", ContentType: "application/pdf", RemoteID: "file-1", Data: make([]byte, 10)})
	assert.Equal(t, "=== FILE: a.pdf (remote-id: file-1) ===\n[binary content application/pdf, 10 bytes, cannot be shown inline]", pdf)

	txt := inlineAttachmentText(model.AttachmentRef{Filename: "a.txt", ContentType: "text/plain", RemoteID: "file-2", Data: []byte("hello")})
	assert.Equal(t, "=== FILE: a.txt (remote-id: file-2) ===\nhello", txt)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))

	s := strings.Repeat("é", 12)
	got := truncateText(s, 10)
	assert.True(t, strings.HasPrefix(got, strings.Repeat("é", 10)+"\n"))
	assert.Contains(t, got, "truncated after 10 characters")
}

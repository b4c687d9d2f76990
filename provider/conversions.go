package provider

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"teros/model"
)

// maxInlineChars caps the extracted text of one inlined attachment.
const maxInlineChars = 40000

// ParseToolArguments parses a JSON arguments string into a map. Malformed
// input yields an empty map.
func ParseToolArguments(argsJSON string) map[string]any {
	args := make(map[string]any)
	if strings.TrimSpace(argsJSON) == "" {
		return args
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return make(map[string]any)
	}
	return args
}

// rawArguments returns argsJSON as a JSON object, substituting {} for
// blank or malformed input.
func rawArguments(argsJSON string) json.RawMessage {
	if json.Valid([]byte(argsJSON)) && strings.HasPrefix(strings.TrimSpace(argsJSON), "{") {
		return json.RawMessage(argsJSON)
	}
	return json.RawMessage("{}")
}

// newCallID generates an id for providers that do not assign one to tool calls.
func newCallID() string {
	return "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func isImage(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func isTextLike(contentType string) bool {
	ct := strings.ToLower(contentType)
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if strings.HasPrefix(ct, "text/") {
		return true
	}
	switch ct {
	case "application/json", "application/xml", "application/yaml", "application/x-yaml",
		"application/javascript", "application/x-sh", "application/sql", "application/toml":
		return true
	}
	return strings.HasSuffix(ct, "+json") || strings.HasSuffix(ct, "+xml")
}

// inlineAttachmentText renders ref for providers that cannot reference
// uploaded files by id. Images are returned with an empty body; callers
// attach them as image parts.
func inlineAttachmentText(ref model.AttachmentRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== FILE: %s (remote-id: %s) ===\n", ref.Filename, ref.RemoteID)

	switch {
	case isImage(ref.ContentType):
		fmt.Fprintf(&b, "[image %s attached]", ref.ContentType)
	case isTextLike(ref.ContentType) || (ref.ContentType == "" && utf8.Valid(ref.Data)):
		b.WriteString(truncateText(string(ref.Data), maxInlineChars))
	default:
		fmt.Fprintf(&b, "[binary content %s, %d bytes, cannot be shown inline]", ref.ContentType, len(ref.Data))
	}
	return b.String()
}

// inlineAttachmentMessage renders every attachment of m as one text block.
func inlineAttachmentMessage(m model.Message) string {
	parts := []string{m.Text}
	for _, ref := range m.Attachments {
		parts = append(parts, inlineAttachmentText(ref))
	}
	return strings.Join(parts, "\n\n")
}

// truncateText cuts s after limit characters and appends a marker.
func truncateText(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + fmt.Sprintf("\n[... truncated after %d characters]", limit)
}

func dataURL(ref model.AttachmentRef) string {
	return "data:" + ref.ContentType + ";base64," + base64.StdEncoding.EncodeToString(ref.Data)
}

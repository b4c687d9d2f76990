package model

import "encoding/json"

// FileAttachment is a binary artifact returned by a tool. It lives only for
// the round-trip that uploads it.
type FileAttachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ToolCallResult is what a tool invocation produces.
//
// ReturnToModel controls what happens after a successful execution: true hands
// the result back to the model for another round-trip, false ends the turn
// with the raw result.
type ToolCallResult struct {
	Name          string
	Result        any
	Files         []FileAttachment
	ReturnToModel bool
}

// NewToolCallResult returns a result that is handed back to the model.
func NewToolCallResult(name string, result any) *ToolCallResult {
	return &ToolCallResult{Name: name, Result: result, ReturnToModel: true}
}

// WithFiles attaches files to the result.
func (r *ToolCallResult) WithFiles(files ...FileAttachment) *ToolCallResult {
	r.Files = append(r.Files, files...)
	return r
}

// Failed reports whether the result carries a ToolError payload.
func (r *ToolCallResult) Failed() bool {
	switch r.Result.(type) {
	case ToolError, *ToolError:
		return true
	}
	return false
}

// ToolError is the structured payload recorded when a tool cannot run or fails.
type ToolError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e ToolError) Error() string {
	return e.Name + ": " + e.Message
}

// MarshalJSON wraps the payload under an "error" key so the model can tell
// failures apart from regular results.
func (e ToolError) MarshalJSON() ([]byte, error) {
	type payload struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	return json.Marshal(struct {
		Error payload `json:"error"`
	}{payload(e)})
}

// SerializeResult renders a tool result payload for the provider. Strings are
// passed through untouched.
func SerializeResult(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		return val, nil
	case json.RawMessage:
		return string(val), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package model

import "time"

// Role identifies the author of a message in the conversation log.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind identifies which payload of a Message is meaningful.
type Kind int

const (
	KindText Kind = iota
	KindToolCall
	KindToolResult
	KindReasoning
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindToolCall:
		return "tool_call"
	case KindToolResult:
		return "tool_result"
	case KindReasoning:
		return "reasoning"
	default:
		return "unknown"
	}
}

// Message represents one entry of the conversation log.
//
// Role and Kind are fixed at construction. Exactly one of Text, ToolCall,
// ToolResult or Reasoning carries the content, selected by Kind. Attachments
// are only set on the system message that enumerates files uploaded for a
// tool round-trip.
//
// Transient messages ride along with exactly one provider round-trip and are
// removed from the log once it completes.
type Message struct {
	Role        Role
	Kind        Kind
	Text        string
	ToolCall    *ToolCall
	ToolResult  *ToolResult
	Reasoning   *Reasoning
	Attachments []AttachmentRef
	Transient   bool
	Timestamp   time.Time
}

// ToolCall is a model request to invoke a host tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // serialized JSON object
}

// ToolResult is the serialized output of a tool invocation.
type ToolResult struct {
	CallID string
	Name   string
	Output string // serialized JSON
}

// Reasoning is a provider-supplied reasoning trace.
type Reasoning struct {
	ID      string // provider handle, empty when the provider has none
	Summary []string
}

// AttachmentRef points at a file uploaded for the current round-trip.
type AttachmentRef struct {
	Filename    string
	ContentType string
	RemoteID    string
	Data        []byte // kept so inline-only providers can render the content
}

func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Kind: KindText, Text: text, Timestamp: time.Now()}
}

func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Kind: KindText, Text: text, Timestamp: time.Now()}
}

func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Kind: KindText, Text: text, Timestamp: time.Now()}
}

// NewToolCallMessage echoes a model tool call back into the log.
func NewToolCallMessage(call ToolCall) Message {
	return Message{Role: RoleAssistant, Kind: KindToolCall, ToolCall: &call, Timestamp: time.Now()}
}

// NewToolResultMessage records the output of a tool call. Tool results are
// attributed to the user side of the exchange.
func NewToolResultMessage(result ToolResult) Message {
	return Message{Role: RoleUser, Kind: KindToolResult, ToolResult: &result, Timestamp: time.Now()}
}

func NewReasoningMessage(r Reasoning) Message {
	return Message{Role: RoleAssistant, Kind: KindReasoning, Reasoning: &r, Timestamp: time.Now()}
}

// NewAttachmentMessage builds the system message listing uploaded files.
func NewAttachmentMessage(text string, refs []AttachmentRef) Message {
	return Message{Role: RoleSystem, Kind: KindText, Text: text, Attachments: refs, Timestamp: time.Now()}
}

// IsText reports whether m is a plain text message with the given role.
func (m Message) IsText(role Role) bool {
	return m.Kind == KindText && m.Role == role
}

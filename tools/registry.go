// Package tools indexes host-defined functions the model may call, reflects
// their input types into JSON schemas and dispatches single invocations.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"teros/model"
)

// NotRegisteredMessage is the error message recorded when the model calls a
// tool that is not in the registry.
const NotRegisteredMessage = "function not registered"

// Handler executes a tool with its raw JSON arguments. It may return a
// *model.ToolCallResult to control attachments and turn handling; any other
// value is treated as the plain result payload.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Definition is a callable tool: its schema, its handler and whether plain
// results go back to the model.
type Definition struct {
	Tool          mcptypes.Tool
	ReturnToModel bool
	handler       Handler
}

// Option customizes a Definition.
type Option func(*Definition)

// EndsTurn makes successful plain results end the turn instead of being
// handed back to the model. Handlers returning a *model.ToolCallResult
// decide for themselves.
func EndsTurn() Option {
	return func(d *Definition) {
		d.ReturnToModel = false
	}
}

// Name returns the tool name.
func (d Definition) Name() string {
	return d.Tool.Name
}

// NewFunction builds a Definition from a typed callback. The input type I is
// reflected into the tool schema; fields tagged `jsonschema:"required"` are
// mandatory.
//
// The callback may return a *model.ToolCallResult to control attachments and
// turn handling, or any other value which is wrapped as a regular result.
func NewFunction[I, O any](name, description string, fn func(ctx context.Context, in I) (O, error), opts ...Option) (Definition, error) {
	if name == "" {
		return Definition{}, fmt.Errorf("tool name is required")
	}
	if fn == nil {
		return Definition{}, fmt.Errorf("tool %s: callback is required", name)
	}

	schema, err := SchemaFor[I]()
	if err != nil {
		return Definition{}, fmt.Errorf("tool %s: %w", name, err)
	}

	tool := mcptypes.Tool{
		Name:        name,
		Description: description,
		InputSchema: schema,
	}

	return newDefinition(tool, func(ctx context.Context, args json.RawMessage) (any, error) {
		var in I
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
		return fn(ctx, in)
	}, opts...), nil
}

// FromTool builds a Definition from an explicit mcp tool schema, for hosts
// that prefer the mcp builder API over struct reflection:
//
//	tool := mcp.NewTool("get_weather",
//	    mcp.WithDescription("Current weather for a city"),
//	    mcp.WithString("city", mcp.Required()),
//	)
//	def := tools.FromTool(tool, handler)
func FromTool(tool mcptypes.Tool, h Handler, opts ...Option) Definition {
	tool.InputSchema = normalizeInputSchema(tool.InputSchema)
	return newDefinition(tool, h, opts...)
}

func newDefinition(tool mcptypes.Tool, h Handler, opts ...Option) Definition {
	d := Definition{Tool: tool, ReturnToModel: true, handler: h}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Invoke runs the tool. It never panics and never returns an error: failures
// of any kind are converted into a result carrying a model.ToolError.
func (d Definition) Invoke(ctx context.Context, arguments string) (res *model.ToolCallResult) {
	name := d.Name()
	defer func() {
		if r := recover(); r != nil {
			res = ErrorResult(name, fmt.Sprint(r))
		}
	}()

	if d.handler == nil {
		return ErrorResult(name, "tool has no handler")
	}

	args := json.RawMessage(arguments)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	out, err := d.handler(ctx, args)
	if err != nil {
		return ErrorResult(name, err.Error())
	}

	res, ok := out.(*model.ToolCallResult)
	switch {
	case !ok:
		res = &model.ToolCallResult{Name: name, Result: out, ReturnToModel: d.ReturnToModel}
	case res == nil:
		res = &model.ToolCallResult{Name: name, ReturnToModel: d.ReturnToModel}
	}
	if res.Name == "" {
		res.Name = name
	}
	// failures always go back to the model
	if res.Failed() {
		res.ReturnToModel = true
	}
	return res
}

// ErrorResult builds the result recorded for a failed tool invocation.
func ErrorResult(name, message string) *model.ToolCallResult {
	return &model.ToolCallResult{
		Name:          name,
		Result:        model.ToolError{Name: name, Message: message},
		ReturnToModel: true,
	}
}

// Registry indexes tool definitions by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]Definition
}

// NewRegistry returns a registry holding defs.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{defs: make(map[string]Definition)}
	if err := r.Register(defs...); err != nil {
		return nil, err
	}
	return r, nil
}

// Register adds definitions. Names must be unique; on a duplicate nothing is
// registered.
func (r *Registry) Register(defs ...Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		name := d.Name()
		if name == "" {
			return fmt.Errorf("tool name is required")
		}
		if _, exists := r.defs[name]; exists || seen[name] {
			return fmt.Errorf("duplicate tool name: %s", name)
		}
		seen[name] = true
	}

	for _, d := range defs {
		r.defs[d.Name()] = d
		r.order = append(r.order, d.Name())
	}
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Execute dispatches a single tool call. Unknown names produce a
// "function not registered" error result.
func (r *Registry) Execute(ctx context.Context, call model.ToolCall) *model.ToolCallResult {
	d, ok := r.Lookup(call.Name)
	if !ok {
		return ErrorResult(call.Name, NotRegisteredMessage)
	}
	return d.Invoke(ctx, call.Arguments)
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Tools returns the mcp schemas of all tools in registration order.
func (r *Registry) Tools() []mcptypes.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]mcptypes.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name].Tool)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

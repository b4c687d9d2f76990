package testutil

import (
	"context"
	"fmt"
	"sync"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"teros/model"
)

// Response is one scripted provider reply.
type Response struct {
	Items []model.OutputItem
	Usage model.UsageSnapshot
	Err   error
}

// MockProvider implements model.Provider for tests. Replies come from
// SendFunc when set, otherwise from the scripted queue.
type MockProvider struct {
	// Configurable responses
	SendFunc func(ctx context.Context, messages []model.Message) ([]model.OutputItem, error)

	mu           sync.Mutex
	script       []Response
	requests     [][]model.Message
	tools        []mcptypes.Tool
	usage        model.UsageSnapshot
	currentModel string
}

// NewMockProvider creates a mock provider answering "Mock response" once the
// script runs out.
func NewMockProvider(modelName string) *MockProvider {
	return &MockProvider{currentModel: modelName}
}

// Script queues replies, consumed in order by Send.
func (m *MockProvider) Script(responses ...Response) *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, responses...)
	return m
}

// SetUsage replaces the usage snapshot reported by Usage.
func (m *MockProvider) SetUsage(u model.UsageSnapshot) {
	m.mu.Lock()
	m.usage = u
	m.mu.Unlock()
}

func (m *MockProvider) Functions(tools []mcptypes.Tool) {
	m.mu.Lock()
	m.tools = append([]mcptypes.Tool(nil), tools...)
	m.mu.Unlock()
}

func (m *MockProvider) Send(ctx context.Context, messages []model.Message) ([]model.OutputItem, error) {
	m.mu.Lock()
	m.requests = append(m.requests, append([]model.Message(nil), messages...))
	fn := m.SendFunc
	var next *Response
	if fn == nil && len(m.script) > 0 {
		next = &m.script[0]
		m.script = m.script[1:]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages)
	}
	if next == nil {
		return []model.OutputItem{model.TextItem("Mock response")}, nil
	}
	if next.Usage != (model.UsageSnapshot{}) {
		m.SetUsage(next.Usage)
	}
	return next.Items, next.Err
}

func (m *MockProvider) BuildSystemMessage(text string) model.Message {
	return model.NewSystemMessage(text)
}

func (m *MockProvider) BuildUserMessage(text string) model.Message {
	return model.NewUserMessage(text)
}

func (m *MockProvider) BuildAssistantMessage(text string) model.Message {
	return model.NewAssistantMessage(text)
}

func (m *MockProvider) Usage() model.UsageSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

func (m *MockProvider) GetDisplayName() string {
	return m.currentModel
}

// Requests returns a copy of every message list passed to Send.
func (m *MockProvider) Requests() [][]model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]model.Message(nil), m.requests...)
}

// Calls returns the number of Send invocations.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// RegisteredTools returns the tools last passed to Functions.
func (m *MockProvider) RegisteredTools() []mcptypes.Tool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tools
}

// MockFileStore implements model.FileStore and records every operation.
type MockFileStore struct {
	UploadFunc func(ctx context.Context, data []byte, filename, contentType string) (string, error)
	DeleteFunc func(ctx context.Context, remoteID string) error

	mu      sync.Mutex
	next    int
	uploads []string
	deletes []string
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{}
}

func (s *MockFileStore) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	s.mu.Lock()
	s.uploads = append(s.uploads, filename)
	s.next++
	id := fmt.Sprintf("file-%d", s.next)
	fn := s.UploadFunc
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, data, filename, contentType)
	}
	return id, nil
}

func (s *MockFileStore) Delete(ctx context.Context, remoteID string) error {
	s.mu.Lock()
	s.deletes = append(s.deletes, remoteID)
	fn := s.DeleteFunc
	s.mu.Unlock()

	if fn != nil {
		return fn(ctx, remoteID)
	}
	return nil
}

// Uploads returns the filenames passed to Upload, including failed attempts.
func (s *MockFileStore) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploads...)
}

// Deletes returns the remote ids passed to Delete, including failed attempts.
func (s *MockFileStore) Deletes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deletes...)
}

// MockProviderWithFiles is a MockProvider that also owns a file store.
type MockProviderWithFiles struct {
	*MockProvider
	*MockFileStore
}

func NewMockProviderWithFiles(modelName string) *MockProviderWithFiles {
	return &MockProviderWithFiles{
		MockProvider:  NewMockProvider(modelName),
		MockFileStore: NewMockFileStore(),
	}
}

package attachment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InlineStore is a file store for providers without remote storage. Files
// stay in memory under locally generated ids until deleted, and adapters
// render their content inline.
type InlineStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func NewInlineStore() *InlineStore {
	return &InlineStore{files: make(map[string][]byte)}
}

func (s *InlineStore) Upload(_ context.Context, data []byte, filename, _ string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required")
	}
	id := "inline-" + uuid.NewString()
	s.mu.Lock()
	s.files[id] = data
	s.mu.Unlock()
	return id, nil
}

func (s *InlineStore) Delete(_ context.Context, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[remoteID]; !ok {
		return fmt.Errorf("attachment %s not found", remoteID)
	}
	delete(s.files, remoteID)
	return nil
}

// Len returns the number of files currently held.
func (s *InlineStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

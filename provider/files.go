package provider

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// openAIFiles implements model.FileStore on an OpenAI-compatible Files API.
// Both OpenAI and xAI expose the same endpoints.
type openAIFiles struct {
	client  *openai.Client
	purpose openai.FilePurpose
	name    string
}

func (f *openAIFiles) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	file, err := f.client.Files.New(ctx, openai.FileNewParams{
		File:    openai.File(bytes.NewReader(data), filename, contentType),
		Purpose: f.purpose,
	})
	if err != nil {
		return "", fmt.Errorf("%s file upload failed: %w", f.name, err)
	}
	return file.ID, nil
}

func (f *openAIFiles) Delete(ctx context.Context, remoteID string) error {
	if _, err := f.client.Files.Delete(ctx, remoteID); err != nil {
		return fmt.Errorf("%s file delete failed: %w", f.name, err)
	}
	return nil
}

package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"

	"teros/model"
)

var contextLengthMarkers = []string{
	"context_length_exceeded",
	"maximum context length",
	"prompt is too long",
	"context window",
}

// isContextLengthError reports whether err is a provider rejection caused by
// the request exceeding the model's context window.
func isContextLengthError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.Code == "context_length_exceeded" {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range contextLengthMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// wrapSendError maps err to model.ErrContextLengthExceeded where it applies.
func wrapSendError(providerName string, err error) error {
	if isContextLengthError(err) {
		return fmt.Errorf("%s: %w: %w", providerName, model.ErrContextLengthExceeded, err)
	}
	return fmt.Errorf("%s request failed: %w", providerName, err)
}

package providers

import (
	"context"
)

// Config represents a single vision request to an LLM provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	// Image holds the raw image bytes sent alongside the prompt.
	Image []byte
	// MIMEType is the image's content type, e.g. "image/jpeg".
	MIMEType string
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

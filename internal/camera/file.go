package camera

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileCamera "captures" an existing photo, for machines without a camera.
type FileCamera struct {
	Path string
}

// NewFileCamera returns a camera that always yields the photo at path.
func NewFileCamera(path string) *FileCamera {
	return &FileCamera{Path: path}
}

// RequestPermission grants access when the photo is readable.
func (c *FileCamera) RequestPermission(ctx context.Context) (Permission, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return PermissionDenied, nil
	}
	f.Close()
	return PermissionGranted, nil
}

// Capture returns the configured photo. An empty path is a cancelled capture.
func (c *FileCamera) Capture(ctx context.Context, opts Options) (Image, error) {
	if c.Path == "" {
		return Image{}, ErrCaptureCancelled
	}

	abs, err := filepath.Abs(c.Path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to resolve image path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}

	return Image{Path: abs, CapturedAt: time.Now()}, nil
}

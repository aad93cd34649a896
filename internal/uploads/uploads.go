package uploads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultExt = ".jpg"

// Store owns the directory uploaded images are written to.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created lazily.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Ensure creates the uploads directory if needed.
func (s *Store) Ensure() error {
	return os.MkdirAll(s.dir, 0755)
}

// Save writes r to a new file named after the current time and returns its
// absolute path and size. The extension comes from originalName.
func (s *Store) Save(r io.Reader, originalName string) (string, int64, error) {
	if err := s.Ensure(); err != nil {
		return "", 0, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], extension(originalName))
	path, err := filepath.Abs(filepath.Join(s.dir, name))
	if err != nil {
		return "", 0, fmt.Errorf("failed to resolve upload path: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload: %w", err)
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("failed to save image: %w", err)
	}

	return path, size, nil
}

// Remove deletes a saved upload.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}

// Sweep deletes regular files last modified more than ttl before now and
// returns how many were removed.
func (s *Store) Sweep(ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list uploads: %w", err)
	}

	cutoff := now.Add(-ttl)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := s.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			slog.Warn("Failed to sweep upload", "file", entry.Name(), "err", err)
			continue
		}
		removed++
	}

	return removed, nil
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, ttl, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			removed, err := s.Sweep(ttl, now)
			if err != nil {
				slog.Error("Upload sweep failed", "err", err)
				continue
			}
			if removed > 0 {
				slog.Info("Swept expired uploads", "removed", removed, "ttl", ttl)
			}
		}
	}
}

func extension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 6 {
		return defaultExt
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return defaultExt
		}
	}
	return ext
}

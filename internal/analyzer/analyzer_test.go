package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analyze.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func TestCommandAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		timeout  time.Duration
		expected string
		wantErr  error
	}{
		{
			name:     "stdout returned verbatim",
			script:   "printf 'Proteins: 20g\\nCarbs: 30g\\n'\n",
			expected: "Proteins: 20g\nCarbs: 30g\n",
		},
		{
			name:     "receives image path as last argument",
			script:   "printf '%s|%s' \"$1\" \"$2\"\n",
			expected: "--flag|/uploads/meal.jpg",
		},
		{
			name:    "stderr output fails even with stdout",
			script:  "echo 'Proteins: 20g'\necho 'warning: deprecated' >&2\n",
			wantErr: ErrAnalyzerStderr,
		},
		{
			name:    "non-zero exit fails",
			script:  "echo 'Proteins: 20g'\nexit 1\n",
			wantErr: ErrAnalyzerExit,
		},
		{
			name:    "timeout fails",
			script:  "exec sleep 5\n",
			timeout: 100 * time.Millisecond,
			wantErr: ErrAnalyzerExit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := writeScript(t, tt.script)
			args := []string{script}
			if tt.name == "receives image path as last argument" {
				args = append(args, "--flag")
			}

			out, err := NewCommand(args, tt.timeout).Analyze(context.Background(), "/uploads/meal.jpg")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Analyze() failed: %v", err)
			}
			if out != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, out)
			}
		})
	}
}

func TestCommandPathIsNotShellInterpreted(t *testing.T) {
	script := writeScript(t, "printf '%s' \"$1\"\n")
	path := "/uploads/$(touch pwned); rm -rf x.jpg"

	out, err := NewCommand([]string{script}, 0).Analyze(context.Background(), path)
	if err != nil {
		t.Fatalf("Analyze() failed: %v", err)
	}
	if out != path {
		t.Errorf("Expected literal path %q, got %q", path, out)
	}
}

func TestCommandWithoutArgs(t *testing.T) {
	if _, err := NewCommand(nil, 0).Analyze(context.Background(), "x.jpg"); !errors.Is(err, ErrNoCommand) {
		t.Errorf("Expected ErrNoCommand, got %v", err)
	}
}

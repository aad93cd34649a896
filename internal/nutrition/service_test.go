package nutrition

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/macrocam/macrocam/internal/providers"
)

type fakeProvider struct {
	answers map[string]string
	err     error
	calls   []providers.Config
}

func (f *fakeProvider) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	f.calls = append(f.calls, config)
	if f.err != nil {
		return "", f.err
	}
	return f.answers[config.Prompt], nil
}

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meal.png")
	data := []byte("\x89PNG\r\n\x1a\n0000")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name      string
		isFood    string
		want      string
		wantCalls int
	}{
		{name: "food", isFood: "yes", want: "Proteins: 20g, Carbs: 30g, Fat: 10g, Calories: 300", wantCalls: 2},
		{name: "food with whitespace and case", isFood: " Yes.\n", want: "Proteins: 20g, Carbs: 30g, Fat: 10g, Calories: 300", wantCalls: 2},
		{name: "not food", isFood: "no", want: NotFood, wantCalls: 1},
		{name: "unexpected answer", isFood: "maybe", want: NotFood, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProvider{answers: map[string]string{
				isFoodPrompt: tt.isFood,
				macrosPrompt: "Proteins: 20g, Carbs: 30g, Fat: 10g, Calories: 300\n",
			}}
			svc := NewServiceWithProviders(map[string]providers.Provider{"fake": fake})

			got, err := svc.Analyze(context.Background(), writeImage(t), Options{Provider: "fake", Model: "m"})
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if len(fake.calls) != tt.wantCalls {
				t.Fatalf("Expected %d calls, got %d", tt.wantCalls, len(fake.calls))
			}
			first := fake.calls[0]
			if first.Model != "m" || first.MIMEType != "image/png" || len(first.Image) == 0 {
				t.Errorf("Unexpected config %+v", first)
			}
		})
	}
}

func TestAnalyzeErrors(t *testing.T) {
	fake := &fakeProvider{err: errors.New("quota exceeded")}
	svc := NewServiceWithProviders(map[string]providers.Provider{"fake": fake})

	if _, err := svc.Analyze(context.Background(), writeImage(t), Options{Provider: "fake"}); err == nil {
		t.Error("Expected provider error")
	}
	if _, err := svc.Analyze(context.Background(), writeImage(t), Options{Provider: "unknown"}); err == nil {
		t.Error("Expected unsupported provider error")
	}
	if _, err := svc.Analyze(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), Options{Provider: "fake"}); err == nil {
		t.Error("Expected missing image error")
	}
}

func TestProviderFromEnvironment(t *testing.T) {
	t.Setenv("MACROCAM_PROVIDER", "fake")
	fake := &fakeProvider{answers: map[string]string{isFoodPrompt: "no"}}
	svc := NewServiceWithProviders(map[string]providers.Provider{"fake": fake})

	got, err := svc.Analyze(context.Background(), writeImage(t), Options{})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got != NotFood {
		t.Errorf("Expected %q, got %q", NotFood, got)
	}
}

func TestDefaultModel(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("OLLAMA_MODEL", "")

	tests := map[string]string{
		"gemini":  "gemini-2.0-flash",
		"openai":  "gpt-4o",
		"ollama":  "llava",
		"unknown": "",
	}
	for provider, want := range tests {
		if got := DefaultModel(provider); got != want {
			t.Errorf("DefaultModel(%q): expected %q, got %q", provider, want, got)
		}
	}

	t.Setenv("OLLAMA_MODEL", "llama3.2-vision")
	if got := DefaultModel("ollama"); got != "llama3.2-vision" {
		t.Errorf("Expected env override, got %q", got)
	}
}

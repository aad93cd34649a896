package nutrition

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/macrocam/macrocam/internal/gemini"
	"github.com/macrocam/macrocam/internal/ollama"
	"github.com/macrocam/macrocam/internal/openai"
	"github.com/macrocam/macrocam/internal/providers"
)

// NotFood is printed instead of macros when the image is not a meal.
const NotFood = "Food not recognized"

const (
	isFoodPrompt = "Respond 'yes' if the image represents food, 'no' otherwise."
	macrosPrompt = "Give me only total macros (protein, carbs, fat) and caloric approximations " +
		"on a single line in the format: " +
		"Proteins: <proteins>, Carbs: <carbs>, Fat: <fat>, Calories: <calories>"
)

// Options selects the provider and model for one analysis. Empty fields
// fall back to MACROCAM_PROVIDER and the provider's default model.
type Options struct {
	Provider    string
	Model       string
	Temperature float64
}

type Service struct {
	providers map[string]providers.Provider
}

// NewService returns a service backed by the Gemini, OpenAI and Ollama providers.
func NewService() *Service {
	return NewServiceWithProviders(map[string]providers.Provider{
		"gemini": gemini.New(),
		"openai": openai.New(),
		"ollama": ollama.New(),
	})
}

func NewServiceWithProviders(p map[string]providers.Provider) *Service {
	return &Service{providers: p}
}

// Analyze asks whether the image shows food and, if so, for its total
// macros. Non-food images yield NotFood.
func (s *Service) Analyze(ctx context.Context, imagePath string, opts Options) (string, error) {
	provider, cfg, err := s.prepare(imagePath, opts)
	if err != nil {
		return "", err
	}

	food, err := isFood(ctx, provider, cfg)
	if err != nil {
		return "", err
	}
	if !food {
		slog.Info("Image is not food", "path", imagePath)
		return NotFood, nil
	}

	cfg.Prompt = macrosPrompt
	macros, err := provider.ExtractText(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to estimate macros: %w", err)
	}
	return strings.TrimSpace(macros), nil
}

func (s *Service) prepare(imagePath string, opts Options) (providers.Provider, providers.Config, error) {
	name := opts.Provider
	if name == "" {
		name = os.Getenv("MACROCAM_PROVIDER")
		if name == "" {
			name = "gemini"
		}
	}

	provider, ok := s.providers[name]
	if !ok {
		return nil, providers.Config{}, fmt.Errorf("unsupported provider: %s", name)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel(name)
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, providers.Config{}, fmt.Errorf("failed to read image: %w", err)
	}

	slog.Debug("Analyzing image", "path", imagePath, "provider", name, "model", model)
	return provider, providers.Config{
		Model:       model,
		Temperature: opts.Temperature,
		Image:       imageData,
		MIMEType:    http.DetectContentType(imageData),
	}, nil
}

func isFood(ctx context.Context, provider providers.Provider, cfg providers.Config) (bool, error) {
	cfg.Prompt = isFoodPrompt
	answer, err := provider.ExtractText(ctx, cfg)
	if err != nil {
		return false, fmt.Errorf("failed to classify image: %w", err)
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return strings.TrimRight(answer, ".!") == "yes", nil
}

// DefaultModel returns the model used when none is given, honoring
// <PROVIDER>_MODEL overrides.
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		if model := os.Getenv("GEMINI_MODEL"); model != "" {
			return model
		}
		return "gemini-2.0-flash"
	case "openai":
		if model := os.Getenv("OPENAI_MODEL"); model != "" {
			return model
		}
		return "gpt-4o"
	case "ollama":
		if model := os.Getenv("OLLAMA_MODEL"); model != "" {
			return model
		}
		return "llava"
	default:
		return ""
	}
}

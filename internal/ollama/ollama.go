package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/macrocam/macrocam/internal/providers"
)

// Ollama is a provider for Ollama
type Ollama struct {
	client *resty.Client
}

// New returns a new Ollama provider
func New() *Ollama {
	return &Ollama{client: resty.New()}
}

// ExtractText answers the prompt about the attached image using Ollama
func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	ollamaURL := os.Getenv("OLLAMA_URL")
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}

	body := map[string]any{
		"model":  config.Model,
		"prompt": config.Prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": config.Temperature,
		},
	}
	if len(config.Image) > 0 {
		body["images"] = []string{base64.StdEncoding.EncodeToString(config.Image)}
	}

	var response struct {
		Response string `json:"response"`
	}
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&response).
		Post(strings.TrimRight(ollamaURL, "/") + "/api/generate")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode(), resp.String())
	}

	return response.Response, nil
}

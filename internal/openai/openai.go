package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/macrocam/macrocam/internal/providers"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAI is a provider for OpenAI
type OpenAI struct {
	client *resty.Client
}

// New returns a new OpenAI provider
func New() *OpenAI {
	return &OpenAI{client: resty.New()}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractText answers the prompt about the attached image using OpenAI
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	content := []contentPart{{Type: "text", Text: config.Prompt}}
	if len(config.Image) > 0 {
		content = append(content, contentPart{
			Type:     "image_url",
			ImageURL: &imageURL{URL: dataURI(config.MIMEType, config.Image)},
		})
	}

	var response chatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetBody(map[string]any{
			"model": config.Model,
			"messages": []map[string]any{
				{"role": "user", "content": content},
			},
			"temperature": config.Temperature,
		}).
		SetResult(&response).
		Post(strings.TrimRight(baseURL, "/") + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode(), resp.String())
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}

func dataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

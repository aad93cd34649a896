package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Multipart contract of the gateway's analyze endpoint.
const (
	FieldName   = "image"
	FileName    = "image.jpg"
	ContentType = "image/jpeg"
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx gateway response.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrMalformedResponse is returned when a 2xx body is not {"macros": "..."}.
	ErrMalformedResponse = errors.New("malformed response body")
)

// Client uploads captured photos to the analysis gateway. It never retries.
type Client struct {
	endpoint string
	http     *resty.Client
}

// NewClient returns a client posting to endpoint. A zero timeout leaves the
// transport default in place.
func NewClient(endpoint string, timeout time.Duration) *Client {
	httpClient := resty.New()
	if timeout > 0 {
		httpClient.SetTimeout(timeout)
	}

	return &Client{
		endpoint: endpoint,
		http:     httpClient,
	}
}

// Analyze uploads the photo at imagePath and returns the gateway's macros text.
func (c *Client) Analyze(ctx context.Context, imagePath string) (string, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField(FieldName, FileName, ContentType, file).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	if !resp.IsSuccess() {
		var body struct {
			Error string `json:"error"`
		}
		message := strings.TrimSpace(resp.String())
		if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
			message = body.Error
		}
		return "", fmt.Errorf("%w: %d - %s", ErrUnexpectedStatus, resp.StatusCode(), message)
	}

	var body struct {
		Macros *string `json:"macros"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if body.Macros == nil {
		return "", fmt.Errorf("%w: missing macros field", ErrMalformedResponse)
	}

	return *body.Macros, nil
}

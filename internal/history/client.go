package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/macrocam/macrocam/internal/models"
)

// Fetch retrieves the gateway's recent analyses, newest first.
func Fetch(ctx context.Context, gatewayURL string, timeout time.Duration) ([]models.Analysis, error) {
	client := resty.New().SetBaseURL(strings.TrimRight(gatewayURL, "/"))
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	var analyses []models.Analysis
	resp, err := client.R().
		SetContext(ctx).
		SetResult(&analyses).
		Get("/api/analyses")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch analyses: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return analyses, nil
}

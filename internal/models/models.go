package models

import "time"

// Analysis statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Analysis records one gateway request
type Analysis struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	ImageFormat string    `json:"image_format,omitempty"` // "jpeg", "png", "gif", "webp"
	ImageWidth  int       `json:"image_width"`
	ImageHeight int       `json:"image_height"`
	Status      string    `json:"status"`
	Macros      string    `json:"macros,omitempty"`
	Error       string    `json:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

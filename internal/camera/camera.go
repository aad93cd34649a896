package camera

import (
	"context"
	"errors"
	"time"
)

// ErrCaptureCancelled is returned by Capture when the user backs out of the
// capture flow. It is not a failure.
var ErrCaptureCancelled = errors.New("capture cancelled")

// Permission is the resolved camera access state.
type Permission int

const (
	PermissionUnknown Permission = iota
	PermissionGranted
	PermissionDenied
)

func (p Permission) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// Image is a captured photo on the local filesystem.
type Image struct {
	Path       string
	CapturedAt time.Time
}

// Options controls the capture flow.
type Options struct {
	AspectWidth  int
	AspectHeight int
	// Quality is in (0, 1]; 1 is maximum.
	Quality float64
	// Width of the captured frame in pixels; height follows the aspect.
	Width int
}

// DefaultOptions is a 4:3 frame at maximum quality.
func DefaultOptions() Options {
	return Options{
		AspectWidth:  4,
		AspectHeight: 3,
		Quality:      1,
		Width:        2028,
	}
}

// Dimensions returns the frame size implied by the width and aspect ratio.
func (o Options) Dimensions() (int, int) {
	if o.AspectWidth <= 0 || o.AspectHeight <= 0 {
		return o.Width, o.Width
	}
	return o.Width, o.Width * o.AspectHeight / o.AspectWidth
}

// QualityPercent maps Quality onto the 1..100 scale capture tools expect.
func (o Options) QualityPercent() int {
	q := int(o.Quality*100 + 0.5)
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

// Camera is the device-level capture interface.
type Camera interface {
	// RequestPermission resolves whether the camera may be used.
	RequestPermission(ctx context.Context) (Permission, error)
	// Capture takes a photo. It returns ErrCaptureCancelled if no photo was
	// taken.
	Capture(ctx context.Context, opts Options) (Image, error)
}

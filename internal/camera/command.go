package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CommandCamera drives an external capture tool such as libcamera-still or
// fswebcam. Arguments may contain the placeholders {output}, {width},
// {height}, {quality} and {device}.
type CommandCamera struct {
	Command []string
	// Device, when set, must be openable for permission to be granted.
	Device string
	// Dir receives captured images.
	Dir string
}

// NewCommandCamera returns a camera writing captures into dir.
func NewCommandCamera(command []string, device, dir string) *CommandCamera {
	return &CommandCamera{
		Command: command,
		Device:  device,
		Dir:     dir,
	}
}

// RequestPermission checks that the capture tool is installed and, when a
// device node is configured, that it can be opened.
func (c *CommandCamera) RequestPermission(ctx context.Context) (Permission, error) {
	if len(c.Command) == 0 {
		return PermissionDenied, fmt.Errorf("no camera command configured")
	}

	if _, err := exec.LookPath(c.Command[0]); err != nil {
		slog.Warn("Camera command not found", "command", c.Command[0], "err", err)
		return PermissionDenied, nil
	}

	if c.Device != "" {
		f, err := os.OpenFile(c.Device, os.O_RDONLY, 0)
		if err != nil {
			slog.Warn("Camera device not accessible", "device", c.Device, "err", err)
			return PermissionDenied, nil
		}
		f.Close()
	}

	return PermissionGranted, nil
}

// Capture runs the capture tool. A tool that exits cleanly without writing
// a photo, or a cancelled context, counts as a cancelled capture.
func (c *CommandCamera) Capture(ctx context.Context, opts Options) (Image, error) {
	if len(c.Command) == 0 {
		return Image{}, fmt.Errorf("no camera command configured")
	}

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return Image{}, fmt.Errorf("failed to create capture directory: %w", err)
	}

	output := filepath.Join(c.Dir, fmt.Sprintf("capture-%d.jpg", time.Now().UnixNano()))
	args := c.expandArgs(output, opts)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		os.Remove(output)
		return Image{}, ErrCaptureCancelled
	}
	if err != nil {
		os.Remove(output)
		return Image{}, fmt.Errorf("camera command failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(output)
	if errors.Is(err, os.ErrNotExist) {
		return Image{}, ErrCaptureCancelled
	}
	if err != nil {
		return Image{}, fmt.Errorf("failed to stat capture: %w", err)
	}
	if info.Size() == 0 {
		os.Remove(output)
		return Image{}, ErrCaptureCancelled
	}

	slog.Info("Image captured", "path", output, "size", info.Size())
	return Image{Path: output, CapturedAt: info.ModTime()}, nil
}

func (c *CommandCamera) expandArgs(output string, opts Options) []string {
	width, height := opts.Dimensions()
	replacer := strings.NewReplacer(
		"{output}", output,
		"{width}", strconv.Itoa(width),
		"{height}", strconv.Itoa(height),
		"{quality}", strconv.Itoa(opts.QualityPercent()),
		"{device}", c.Device,
	)

	args := make([]string, len(c.Command))
	for i, arg := range c.Command {
		args[i] = replacer.Replace(arg)
	}
	return args
}

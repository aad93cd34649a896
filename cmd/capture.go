package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/macrocam/macrocam/internal/camera"
	"github.com/macrocam/macrocam/internal/logging"
	"github.com/macrocam/macrocam/internal/screen"
	"github.com/macrocam/macrocam/internal/upload"
)

func newCaptureCmd(opts *rootOptions) *cobra.Command {
	var (
		endpoint string
		image    string
		device   string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Open the camera screen and analyze meal photos",
		Long: `Opens the capture screen. Press space to take a photo; it is uploaded
to the gateway and the estimated macros are shown as cards.

Photos come from the configured camera command (libcamera-still by
default). Use --image to analyze an existing file instead.`,
		Example: `  # Capture with the default camera and gateway
  macrocam capture

  # Send an existing photo to a remote gateway
  macrocam capture --image lunch.jpg --endpoint http://192.168.0.18:5001/analyze-image`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg.Capture
			if cmd.Flags().Changed("endpoint") {
				cfg.Endpoint = endpoint
			}
			if cmd.Flags().Changed("device") {
				cfg.CameraDevice = device
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = timeout
			}

			// The screen owns the terminal, so logs go to a file or nowhere.
			var logOut io.Writer = io.Discard
			if cfg.LogFile != "" {
				f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file: %w", err)
				}
				defer f.Close()
				logOut = f
			}
			if _, err := logging.Setup(logOut, opts.cfg.LogLevel); err != nil {
				return err
			}

			var cam camera.Camera
			if image != "" {
				cam = camera.NewFileCamera(image)
			} else {
				cam = camera.NewCommandCamera(cfg.CameraCommand, cfg.CameraDevice, cfg.ImageDir)
			}

			client := upload.NewClient(cfg.Endpoint, cfg.Timeout)
			return screen.Run(cmd.Context(), cam, client, camera.DefaultOptions())
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "Gateway analyze URL")
	cmd.Flags().StringVarP(&image, "image", "i", "", "Use an existing image file instead of the camera")
	cmd.Flags().StringVar(&device, "device", "", "Camera device path")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Upload timeout (0 waits indefinitely)")

	return cmd
}

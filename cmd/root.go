package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/macrocam/macrocam/internal/config"
	"github.com/macrocam/macrocam/internal/logging"
)

// rootOptions carries the persistent flags and the loaded configuration
// to every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "macrocam",
		Short: "Photograph a meal and get its estimated macros",
		Long: `Macrocam captures a photo of your meal, uploads it to an analysis
gateway and shows the estimated proteins, carbs, fat and calories.

Run "macrocam serve" on the machine holding the analyzer and
"macrocam capture" on the device with the camera.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			opts.cfg = cfg

			_, err = logging.Setup(os.Stderr, cfg.LogLevel)
			return err
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default "+config.DefaultPath+" if present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newCaptureCmd(opts))
	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}

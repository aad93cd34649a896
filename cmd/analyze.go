package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/macrocam/macrocam/internal/logging"
	"github.com/macrocam/macrocam/internal/nutrition"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		provider string
		model    string
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Estimate the macros of a meal photo",
		Long: `Asks a vision LLM whether the image shows food and, if it does, for
its total proteins, carbs, fat and calories. The answer is printed to
stdout; non-food images print "Food not recognized".

This is the gateway's default analyzer. The gateway treats any stderr
output as a failure, so logging is off unless --verbose is set.

Environment variables:
  MACROCAM_PROVIDER   gemini (default), openai or ollama
  GEMINI_API_KEY      required for gemini
  OPENAI_API_KEY      required for openai
  OLLAMA_URL          ollama host (default http://localhost:11434)`,
		Example: `  macrocam analyze meal.jpg
  macrocam analyze --provider ollama --model llava meal.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var logOut io.Writer = io.Discard
			if verbose {
				logOut = os.Stderr
			}
			if _, err := logging.Setup(logOut, opts.cfg.LogLevel); err != nil {
				return err
			}

			imagePath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve image path: %w", err)
			}

			cfg := opts.cfg.Analyzer
			if cmd.Flags().Changed("provider") {
				cfg.Provider = provider
			}
			if cmd.Flags().Changed("model") {
				cfg.Model = model
			}

			macros, err := nutrition.NewService().Analyze(cmd.Context(), imagePath, nutrition.Options{
				Provider:    cfg.Provider,
				Model:       cfg.Model,
				Temperature: cfg.Temperature,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), macros)
			return err
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: gemini, openai, ollama")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default depends on provider)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")

	return cmd
}

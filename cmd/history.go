package cmd

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/macrocam/macrocam/internal/history"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Export and inspect past gateway analyses",
	}

	cmd.AddCommand(newHistoryExportCmd(opts))
	cmd.AddCommand(newHistoryShowCmd())

	return cmd
}

func newHistoryExportCmd(opts *rootOptions) *cobra.Command {
	var (
		gateway string
		out     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Save the gateway's recent analyses as Parquet or JSONL",
		Example: `  macrocam history export --out analyses.parquet
  macrocam history export --gateway http://192.168.0.18:5001 --out analyses.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gateway == "" {
				base, err := gatewayBase(opts.cfg.Capture.Endpoint)
				if err != nil {
					return err
				}
				gateway = base
			}

			analyses, err := history.Fetch(cmd.Context(), gateway, timeout)
			if err != nil {
				return err
			}
			if err := history.Write(out, analyses); err != nil {
				return err
			}

			slog.Info("Exported analyses", "gateway", gateway, "out", out, "count", len(analyses))
			return nil
		},
	}

	cmd.Flags().StringVarP(&gateway, "gateway", "g", "", "Gateway base URL (default derived from the capture endpoint)")
	cmd.Flags().StringVarP(&out, "out", "o", "analyses.parquet", "Output file (.parquet or .jsonl)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print an exported history file as a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := history.Load(args[0])
			if err != nil {
				return err
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("CREATED", "STATUS", "FORMAT", "SIZE", "MS", "MACROS")
			for _, r := range records {
				t.Row(
					r.Time().Format(time.DateTime),
					r.Status,
					r.ImageFormat,
					strconv.FormatInt(r.Size, 10),
					strconv.FormatInt(r.DurationMS, 10),
					r.Macros,
				)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return err
		},
	}
}

// gatewayBase strips the path from an analyze endpoint.
func gatewayBase(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	u.Path = ""
	u.RawQuery = ""
	return u.String(), nil
}

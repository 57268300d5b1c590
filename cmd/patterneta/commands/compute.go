package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/patterneta/internal/app"
)

func (c *CLI) newComputeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute every missing or stale duration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			speeds, _ := cmd.Flags().GetIntSlice("speed")
			interactive, _ := cmd.Flags().GetBool("tui")

			status, err := c.app.Compute(cmd.Context(), configPath(cmd), app.ComputeOptions{
				Speeds:      speeds,
				Interactive: interactive,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(status)
			}
			_, err = fmt.Fprintf(out, "%d/%d patterns calculated, %d cached (%s)\n",
				status.Completed, status.Total, status.CacheSize, status.LastOutcome)
			return err
		},
	}

	cmd.Flags().IntSliceP("speed", "s", nil, "Speeds to compute (defaults to the configured speeds)")
	cmd.Flags().BoolP("tui", "t", false, "Show an interactive progress view (p pause, r resume, s stop)")

	return cmd
}

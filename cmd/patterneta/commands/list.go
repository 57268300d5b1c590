package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/patterneta/internal/core/domain"
)

type listEntry struct {
	Pattern  string  `json:"pattern"`
	Speed    int     `json:"speed"`
	Seconds  float64 `json:"seconds"`
	Duration string  `json:"duration"`
}

func (c *CLI) newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every cached duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.app.List(cmd.Context(), configPath(cmd))
			if err != nil {
				return err
			}

			speed, _ := cmd.Flags().GetInt("speed")

			rows := make([]listEntry, 0, len(entries))
			for _, e := range entries {
				if speed > 0 && e.Speed != speed {
					continue
				}
				rows = append(rows, listEntry{
					Pattern:  string(e.Pattern),
					Speed:    e.Speed,
					Seconds:  e.Seconds,
					Duration: domain.FormatDuration(e.Seconds),
				})
			}

			out := cmd.OutOrStdout()
			if jsonOutput(cmd) {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PATTERN\tSPEED\tDURATION")
			for _, r := range rows {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Pattern, r.Speed, r.Duration)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntP("speed", "s", 0, "Only list durations for this speed")

	return cmd
}

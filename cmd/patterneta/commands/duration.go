package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/patterneta/internal/app"
)

// unknownDuration is printed when no fresh duration is cached.
const unknownDuration = "unknown"

func (c *CLI) newDurationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duration <pattern>",
		Short: "Print the cached duration of a pattern, or unknown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speed, _ := cmd.Flags().GetInt("speed")
			compute, _ := cmd.Flags().GetBool("compute")

			formatted, ok, err := c.app.Duration(cmd.Context(), configPath(cmd), args[0], app.DurationOptions{
				Speed:   speed,
				Compute: compute,
			})
			if err != nil {
				return err
			}
			if !ok {
				formatted = unknownDuration
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatted)
			return err
		},
	}

	cmd.Flags().IntP("speed", "s", 0, "Speed to look up (defaults to the first configured speed)")
	cmd.Flags().Bool("compute", false, "Compute the duration when it is missing or stale")

	return cmd
}

package cli

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
)

func newSweepCommand(rt *runtime) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Re-verify gateway bills whose tenant never came back",
		Long: `sweep asks the gateway about every payment that has been awaiting the
gateway for longer than --older-than and records the ones that were paid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := rt.container(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := c.Reconciler.SweepAwaitingGateway(cmd.Context(), olderThan)
			if res != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(res); encErr != nil && err == nil {
					err = encErr
				}
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*time.Minute, "only bills created before now minus this duration")
	return cmd
}

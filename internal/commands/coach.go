package commands

import (
	"github.com/spf13/cobra"
)

func addCoach(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Ask the coach for a strategy for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c, err := o.connect(cmd)
			if err != nil {
				return o.HandleError(out, err)
			}
			if err := c.resume(cmd.Context()); err != nil {
				return o.HandleError(out, err)
			}
			advice, err := c.engine.Coach(cmd.Context())
			if err != nil {
				return o.HandleError(out, mutation(false, err))
			}
			if o.JSON {
				return o.printJSON(out, map[string]string{"advice": advice})
			}
			printer{w: out}.Line("%s", advice)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

package commands

import (
	"github.com/spf13/cobra"
)

func addHistory(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completions per day for the last week",
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
			bars := c.engine.Dashboard().History
			if o.JSON {
				return o.printJSON(out, bars)
			}
			printer{w: out}.History(bars)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

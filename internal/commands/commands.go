// Package commands is the habits command line: one cobra command per
// tracker operation.
package commands

import (
	"github.com/spf13/cobra"
)

// New returns the root command.
func New() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "habits",
		Short: "Track daily habits against a habit service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false,
		"Log every request to stderr.")
	cmd.PersistentFlags().StringVar(&o.Server, "server", "",
		"Habit service API base, overrides the config file.")
	cmd.PersistentFlags().BoolVar(&o.JSON, "json", false,
		"Output as JSON.")

	addCommands(cmd, o)
	return cmd
}

// addCommands attaches every subcommand to topLevel.
func addCommands(topLevel *cobra.Command, o *rootOptions) {
	addLogin(topLevel, o)
	addRegister(topLevel, o)
	addLogout(topLevel, o)
	addList(topLevel, o)
	addAdd(topLevel, o)
	addToggle(topLevel, o)
	addDelete(topLevel, o)
	addReset(topLevel, o)
	addHistory(topLevel, o)
	addCoach(topLevel, o)
}

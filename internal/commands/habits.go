package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"habits/internal/tracker"
)

func addList(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show today's habits, progress and history",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c, err := o.connect(cmd)
			if err != nil {
				return o.HandleError(out, err)
			}
			if err := c.resume(cmd.Context()); err != nil {
				return o.HandleError(out, err)
			}
			d := c.engine.Dashboard()
			if !d.Loaded {
				return o.HandleError(out, c.notLoaded())
			}
			if o.JSON {
				return o.printJSON(out, d)
			}
			printer{w: out}.Dashboard(d)
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}

func addAdd(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a habit",
		Example: `
habits add Drink water
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			return o.mutate(cmd, func(c *client) (bool, error) {
				if strings.TrimSpace(name) == "" {
					return false, errors.New("habit name is blank")
				}
				return c.engine.Create(cmd.Context(), name)
			}, fmt.Sprintf("Added %q.", strings.TrimSpace(name)))
		},
	}

	topLevel.AddCommand(cmd)
}

func addToggle(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:     "toggle <id>",
		Aliases: []string{"done", "check"},
		Short:   "Mark a habit done, or not done again",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return o.HandleError(cmd.OutOrStdout(), err)
			}
			return o.mutate(cmd, func(c *client) (bool, error) {
				return c.engine.Toggle(cmd.Context(), id)
			}, fmt.Sprintf("Toggled habit %d.", id))
		},
	}

	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a habit",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return o.HandleError(cmd.OutOrStdout(), err)
			}
			return o.mutate(cmd, func(c *client) (bool, error) {
				return c.engine.Delete(cmd.Context(), id)
			}, fmt.Sprintf("Deleted habit %d.", id))
		},
	}

	topLevel.AddCommand(cmd)
}

func addReset(topLevel *cobra.Command, o *rootOptions) {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Mark every habit not done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.mutate(cmd, func(c *client) (bool, error) {
				return c.engine.Reset(cmd.Context())
			}, "All habits reset.")
		},
	}

	topLevel.AddCommand(cmd)
}

// mutate resumes the session, runs op and prints the refreshed dashboard.
func (o *rootOptions) mutate(cmd *cobra.Command, op func(*client) (bool, error), done string) error {
	out := cmd.OutOrStdout()
	c, err := o.connect(cmd)
	if err != nil {
		return o.HandleError(out, err)
	}
	if err := c.resume(cmd.Context()); err != nil {
		return o.HandleError(out, err)
	}
	if err := mutation(op(c)); err != nil {
		return o.HandleError(out, err)
	}

	d := c.engine.Dashboard()
	if o.JSON {
		return o.printJSON(out, struct {
			tracker.Dashboard
			Celebrate bool `json:"celebrate"`
		}{d, c.celebrated})
	}
	p := printer{w: out}
	p.Line("%s", done)
	if c.celebrated {
		p.Celebrate()
	}
	p.Dashboard(d)
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid habit id %q", s)
	}
	return id, nil
}

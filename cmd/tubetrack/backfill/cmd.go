// Package backfillcmd implements the `tubetrack backfill` command.
package backfillcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tubetrack/cmd/tubetrack/shared"
)

// Command implements `tubetrack backfill`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the backfill command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "backfill",
		Short: `Assign the "unknown" category to links that have none`,
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	app, err := c.ctx.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Videos.BackfillUncategorized(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if report.Links == 0 {
		fmt.Fprintln(out, "Nothing to backfill.")
		return nil
	}
	fmt.Fprintf(out, "Updated %d links in %d collections\n", report.Links, report.Collections)
	return nil
}

// Package seedcmd implements the `tubetrack seed` command.
package seedcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tubetrack/cmd/tubetrack/shared"
	"tubetrack/internal/domain"
)

// Command implements `tubetrack seed`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the seed command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "seed",
		Short: "Write the training curriculum and create the dashboard collections",
		Long: "Writes every month of the built-in curriculum, replacing any recorded progress,\n" +
			"and creates the videostowatch and videosshouldberewatched collections if missing.",
		Args: cobra.NoArgs,
		RunE: c.run,
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

	n, err := app.Training.Seed(cmd.Context())
	if err != nil {
		return err
	}
	if err := app.Videos.EnsureCollections(cmd.Context(), domain.ToWatchCollection, domain.RewatchCollection); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d months with %d days each\n", n, domain.DaysPerMonth)
	return nil
}

// Package restorecmd implements the `tubetrack restore` command.
package restorecmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tubetrack/cmd/tubetrack/shared"
)

type restorer interface {
	Restore(r io.Reader) error
}

// Command implements `tubetrack restore`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
	in  string
}

// New creates the restore command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "restore",
		Short: "Load a backup written by `tubetrack backup` into the badger store",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.in, "in", "", "Backup file to read")
	_ = c.cmd.MarkFlagRequired("in")
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

	r, ok := app.Repo.(restorer)
	if !ok {
		return errors.New("restore is only supported by the badger store")
	}

	f, err := os.Open(c.in)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.in, err)
	}
	defer f.Close()

	if err := r.Restore(f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Restored %s\n", c.in)
	return nil
}

// Package backupcmd implements the `tubetrack backup` command.
package backupcmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tubetrack/cmd/tubetrack/shared"
)

type backuper interface {
	Backup(w io.Writer) error
}

// Command implements `tubetrack backup`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
	out string
}

// New creates the backup command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "backup",
		Short: "Write a compressed backup of the badger store",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().StringVar(&c.out, "out", "", "Backup file to write")
	_ = c.cmd.MarkFlagRequired("out")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) (err error) {
	app, err := c.ctx.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	b, ok := app.Repo.(backuper)
	if !ok {
		return errors.New("backup is only supported by the badger store")
	}

	f, err := os.Create(c.out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.out, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", c.out, closeErr)
		}
	}()

	if err := b.Backup(f); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", c.out)
	return nil
}

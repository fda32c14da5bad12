// Package rootcmd wires the root cobra.Command for the tubetrack binary.
package rootcmd

import (
	"github.com/spf13/cobra"

	backfillcmd "tubetrack/cmd/tubetrack/backfill"
	backupcmd "tubetrack/cmd/tubetrack/backup"
	restorecmd "tubetrack/cmd/tubetrack/restore"
	seedcmd "tubetrack/cmd/tubetrack/seed"
	servecmd "tubetrack/cmd/tubetrack/serve"
	"tubetrack/cmd/tubetrack/shared"
)

// New creates and returns the root cobra.Command.
func New() *cobra.Command {
	ctx := &shared.Context{}

	root := &cobra.Command{
		Use:           "tubetrack",
		Short:         "Video bookmarks and training progress tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	root.PersistentFlags().StringVar(
		&ctx.ConfigDir, "config", "./configs",
		"Directory containing config.yaml (TUBETRACK_* env vars override it)",
	)

	root.AddCommand(
		servecmd.New(ctx).Cmd(),
		seedcmd.New(ctx).Cmd(),
		backfillcmd.New(ctx).Cmd(),
		backupcmd.New(ctx).Cmd(),
		restorecmd.New(ctx).Cmd(),
	)

	return root
}

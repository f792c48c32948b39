package root

import (
	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/tui"
)

func newBoardCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			path, err := a.cfg.ResolveDBPath()
			if err != nil {
				return err
			}
			return tui.RunBoard(ctx, svc, path, cmd.OutOrStdout(), a.log)
		},
	}
	return cmd
}

package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func newLeaderboardCmd(a *app) *cobra.Command {
	var weekly, refresh, resetWeekly bool
	cmd := &cobra.Command{
		Use:     "leaderboard",
		Aliases: []string{"lb"},
		Short:   "Rank every local user by points",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, cleanup, err := a.openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if refresh {
				if err := svc.RefreshRanks(ctx); err != nil {
					return err
				}
			}
			if resetWeekly {
				if err := svc.ResetWeeklyPoints(ctx); err != nil {
					return err
				}
			}

			period := engine.PeriodAll
			title := "Leaderboard"
			if weekly {
				period = engine.PeriodWeekly
				title = "Leaderboard (this week)"
			}
			entries, err := svc.Leaderboard(ctx, period)
			if err != nil {
				return err
			}

			var me string
			if u, err := svc.CurrentUser(ctx); err == nil {
				me = u.ID
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTrophy, title))
			for _, e := range entries {
				score := e.Points
				if weekly {
					score = e.WeeklyPoints
				}
				name := e.Name
				if e.UserID == me {
					name = ui.Gold.Render(name + " (you)")
				}
				fmt.Fprintf(out, "%3d %s %s %s %s %s\n", e.Position, ui.TrendIcon(string(e.Trend)), name,
					ui.Muted.Render(fmt.Sprintf("L%d", e.Level)), ui.Badge(e.Badge), ui.Key.Render(fmt.Sprintf("%d pts", score)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&weekly, "weekly", "w", false, "Rank by this week's points")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Recompute stored ranks first")
	cmd.Flags().BoolVar(&resetWeekly, "reset-weekly", false, "Zero everyone's weekly points first")
	return cmd
}

package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func newStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show points, level, badge and streak",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			unread, err := svc.UnreadCount(ctx, u.ID)
			if err != nil {
				return err
			}
			stats, err := svc.TaskStats(ctx, u.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printStanding(cmd, u)
			fmt.Fprintln(out, ui.LabelValue("Tasks", fmt.Sprintf("%d done, %d open", stats.Completed, stats.Active)))
			fmt.Fprintln(out, ui.LabelValue("Focus", fmt.Sprintf("%.1f h", u.FocusHours)))
			if unread > 0 {
				fmt.Fprintln(out, ui.LabelValue("Notifications", ui.Warn.Render(fmt.Sprintf("%s %d unread", ui.IconBell, unread))))
			}
			return nil
		},
	}
	return cmd
}

// printStanding prints the user's level block shared by status and profile.
func printStanding(cmd *cobra.Command, u *storage.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.Heading(ui.IconSparkle, fmt.Sprintf("%s (%s)", u.Name, u.Initials)))
	fmt.Fprintln(out, ui.LabelValue("Level", fmt.Sprintf("%d %s", u.Level, ui.Badge(u.Badge))))
	toNext := engine.PointsToNextLevel(u.Points)
	fmt.Fprintln(out, ui.LabelValue("Points", fmt.Sprintf("%d %s %s",
		u.Points,
		ui.ProgressBar(engine.LevelProgress(u.Points), 100, 20),
		ui.Muted.Render(fmt.Sprintf("(%d to next level)", toNext)))))
	fmt.Fprintln(out, ui.LabelValue("Streak", fmt.Sprintf("%s %d days", ui.IconFire, u.Streak)))
}

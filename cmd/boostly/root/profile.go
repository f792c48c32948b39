package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func newProfileCmd(a *app) *cobra.Command {
	var name, avatar, photo string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your profile and achievements",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			flags := cmd.Flags()
			if flags.Changed("name") || flags.Changed("avatar") || flags.Changed("photo") {
				var upd engine.UserUpdate
				if flags.Changed("name") {
					upd.Name = &name
				}
				if flags.Changed("avatar") {
					upd.Avatar = &avatar
				}
				if flags.Changed("photo") {
					upd.ProfilePhoto = &photo
				}
				if _, err := svc.UpdateUser(ctx, u.ID, upd); err != nil {
					return err
				}
			}

			p, err := svc.Profile(ctx, u.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printStanding(cmd, &p.User)
			fmt.Fprintln(out, ui.LabelValue("Rank", fmt.Sprintf("#%d %s", p.User.Rank, ui.TrendIcon(string(p.Trend)))))
			fmt.Fprintln(out, ui.LabelValue("Tasks", fmt.Sprintf("%d completed, %d pts", p.Tasks.Completed, p.Tasks.Points)))
			fmt.Fprintln(out, ui.LabelValue("Habits", len(p.Habits)))
			fmt.Fprintln(out, ui.LabelValue("Focus sessions", len(p.FocusSessions)))
			fmt.Fprintln(out, "")
			fmt.Fprintln(out, ui.H2.Render(fmt.Sprintf("%s Achievements (%d/%d)", ui.IconTrophy, p.EarnedCount, len(p.Achievements))))
			for _, ach := range p.Achievements {
				line := fmt.Sprintf("%s %s %s", ach.Icon, ach.Name, ui.Muted.Render(ach.Description))
				if !ach.Earned {
					line = ui.Muted.Render(ach.Icon + " " + ach.Name + " " + ach.Description)
				}
				fmt.Fprintln(out, "- "+line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Set display name")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Set avatar style")
	cmd.Flags().StringVar(&photo, "photo", "", "Set profile photo URL (empty removes it)")
	return cmd
}

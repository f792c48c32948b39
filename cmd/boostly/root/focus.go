package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func newFocusCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "focus [short|work|long]",
		Short: "Log a finished focus session, or list past sessions",
		Long: `Log a finished focus session.

  short  5 min break   +15 pts
  work   25 min focus  +50 pts
  long   15 min break  +100 pts`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			if list || len(args) == 0 {
				sessions, err := svc.ListFocusSessions(ctx, u.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, ui.Heading(ui.IconTimer, "Focus sessions"))
				fmt.Fprintln(out, ui.LabelValue("Total", fmt.Sprintf("%.1f h", u.FocusHours)))
				for _, s := range sessions {
					fmt.Fprintf(out, "- %s %s %d min %s\n", s.CompletedAt.Local().Format("2006-01-02 15:04"), s.Kind, s.Minutes, ui.Points(s.Points))
				}
				return nil
			}

			res, err := svc.CompleteFocusSession(ctx, u.ID, engine.ParseFocusKind(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %s session, %d min %s\n", ui.Good.Render(ui.IconTimer+" Logged"), res.Session.Kind, res.Session.Minutes, ui.Points(res.Session.Points))
			printProgress(cmd, res.Update)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List past sessions")
	return cmd
}

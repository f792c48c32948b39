package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func newHabitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Manage daily habits",
	}
	cmd.AddCommand(
		newHabitAddCmd(a),
		newHabitListCmd(a),
		newHabitDoneCmd(a),
		newHabitUndoCmd(a),
		newHabitRmCmd(a),
	)
	return cmd
}

func habitID(ctx context.Context, svc *engine.Service, userID, ref string) (string, error) {
	habits, err := svc.ListHabits(ctx, userID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(habits))
	for i := range habits {
		ids[i] = habits[i].ID
	}
	return resolveRef(ref, ids)
}

func newHabitAddCmd(a *app) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a habit",
		Args:  exactlyOne("title"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			h, err := svc.CreateHabit(ctx, u.ID, engine.HabitInput{Title: args[0], Category: engine.ParseCategory(category)})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Good.Render(ui.IconLoop+" Added habit"), h.Title, ui.Muted.Render(h.Category))
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "Personal", "Category (Work|Health|Learning|Personal)")
	return cmd
}

func newHabitListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List habits with today's state and streaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			habits, err := svc.ListHabits(ctx, u.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconLoop, "Habits"))
			if len(habits) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No habits."))
				return nil
			}
			for i, h := range habits {
				done := svc.CompletedToday(h)
				info := fmt.Sprintf("%s %d (best %d)", ui.IconFire, h.Streak, h.BestStreak)
				if !done {
					info += fmt.Sprintf(", +%d today", engine.HabitPoints(h.Streak))
				}
				fmt.Fprintf(out, "%3d %s %s %s %s\n", i+1, ui.CheckIcon(done), h.Title, ui.Muted.Render(h.Category), ui.Muted.Render(info))
			}
			return nil
		},
	}
}

func newHabitDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <n|id>",
		Short: "Check in a habit for today",
		Args:  exactlyOne("habit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := habitID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			res, err := svc.CompleteHabit(ctx, u.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", ui.Good.Render(ui.IconDone+" Checked in"), res.Habit.Title,
				ui.Points(res.PointsDelta), ui.Muted.Render(fmt.Sprintf("%s %d", ui.IconFire, res.Habit.Streak)))
			printProgress(cmd, res.Update)
			return nil
		},
	}
}

func newHabitUndoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <n|id>",
		Short: "Undo today's check-in",
		Args:  exactlyOne("habit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := habitID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			res, err := svc.UndoHabit(ctx, u.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Warn.Render(ui.IconUndo+" Undone"), res.Habit.Title, ui.Points(res.PointsDelta))
			printProgress(cmd, res.Update)
			return nil
		},
	}
}

func newHabitRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <n|id>",
		Short: "Delete a habit",
		Args:  exactlyOne("habit"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := habitID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteHabit(ctx, u.ID, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(ui.IconTrash+" Deleted"))
			return nil
		},
	}
}

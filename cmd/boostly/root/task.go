package root

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

const dateLayout = "2006-01-02"

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(a),
		newTaskListCmd(a),
		newTaskEditCmd(a),
		newTaskDoneCmd(a),
		newTaskRmCmd(a),
	)
	return cmd
}

func exactlyOne(what string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New(what + " is required")
		}
		return nil
	}
}

func parseDate(s string, loc *time.Location) (*time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return nil, fmt.Errorf("due date must be YYYY-MM-DD: %w", err)
	}
	return &t, nil
}

// taskID resolves a task reference against the unfiltered task list.
func taskID(ctx context.Context, svc *engine.Service, userID, ref string) (string, error) {
	tasks, err := svc.ListTasks(ctx, userID, engine.TaskFilter{})
	if err != nil {
		return "", err
	}
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	return resolveRef(ref, ids)
}

func newTaskAddCmd(a *app) *cobra.Command {
	var description, priority, category, due string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  exactlyOne("title"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			in := engine.TaskInput{
				Title:       args[0],
				Description: description,
				Priority:    engine.ParsePriority(priority),
				Category:    engine.ParseCategory(category),
			}
			if due != "" {
				loc, err := a.cfg.Location()
				if err != nil {
					return err
				}
				if in.DueDate, err = parseDate(due, loc); err != nil {
					return err
				}
			}
			t, err := svc.CreateTask(ctx, u.ID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", ui.Good.Render(ui.IconPlus+" Added"), t.Title,
				ui.PriorityText(t.Priority), ui.Muted.Render(fmt.Sprintf("(%d pts)", t.Points)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "Priority (low|medium|high)")
	cmd.Flags().StringVarP(&category, "category", "c", "Personal", "Category (Work|Health|Learning|Personal)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func newTaskListCmd(a *app) *cobra.Command {
	var category, query string
	var open, done bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			all, err := svc.ListTasks(ctx, u.ID, engine.TaskFilter{})
			if err != nil {
				return err
			}
			f := engine.TaskFilter{Query: query}
			if category != "" {
				f.Category = engine.ParseCategory(category)
			}
			switch {
			case open && done:
				return errors.New("--open and --done are mutually exclusive")
			case open:
				v := false
				f.Completed = &v
			case done:
				v := true
				f.Completed = &v
			}
			tasks, err := svc.ListTasks(ctx, u.ID, f)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stats, err := svc.TaskStats(ctx, u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Heading(ui.IconBolt, "Tasks"))
			fmt.Fprintln(out, ui.Muted.Render(fmt.Sprintf("%d total, %d completed, %d active, %d pts earned",
				stats.Total, stats.Completed, stats.Active, stats.Points)))
			if len(tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("No tasks."))
				return nil
			}
			// Positions refer to the unfiltered list so they stay valid for done/edit/rm.
			pos := make(map[string]int, len(all))
			for i := range all {
				pos[all[i].ID] = i + 1
			}
			for i := range tasks {
				fmt.Fprintln(out, taskLine(pos[tasks[i].ID], &tasks[i]))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only this category")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Match title or description")
	cmd.Flags().BoolVar(&open, "open", false, "Only open tasks")
	cmd.Flags().BoolVar(&done, "done", false, "Only completed tasks")
	return cmd
}

func taskLine(pos int, t *storage.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d %s %s %s %s", pos, ui.CheckIcon(t.Completed), t.Title, ui.PriorityText(t.Priority), ui.Muted.Render(t.Category))
	if t.DueDate != nil {
		b.WriteString(" " + ui.Muted.Render("due "+t.DueDate.Format(dateLayout)))
	}
	b.WriteString(" " + ui.Muted.Render(fmt.Sprintf("%d pts", t.Points)))
	return b.String()
}

func newTaskEditCmd(a *app) *cobra.Command {
	var title, description, priority, category, due string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "edit <n|id>",
		Short: "Edit a task",
		Args:  exactlyOne("task"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := taskID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			var edit engine.TaskEdit
			flags := cmd.Flags()
			if flags.Changed("title") {
				edit.Title = &title
			}
			if flags.Changed("desc") {
				edit.Description = &description
			}
			if flags.Changed("priority") {
				p := engine.ParsePriority(priority)
				edit.Priority = &p
			}
			if flags.Changed("category") {
				c := engine.ParseCategory(category)
				edit.Category = &c
			}
			if due != "" {
				loc, err := a.cfg.Location()
				if err != nil {
					return err
				}
				if edit.DueDate, err = parseDate(due, loc); err != nil {
					return err
				}
			}
			edit.ClearDueDate = clearDue

			t, err := svc.EditTask(ctx, u.ID, id, edit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render("Updated"), t.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	return cmd
}

func newTaskDoneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <n|id>",
		Short: "Toggle a task's completion",
		Args:  exactlyOne("task"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := taskID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			res, err := svc.ToggleTask(ctx, u.ID, id)
			if err != nil {
				return err
			}
			verb := ui.Warn.Render(ui.IconUndo + " Reopened")
			if res.Task.Completed {
				verb = ui.Good.Render(ui.IconDone + " Completed")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", verb, res.Task.Title, ui.Points(res.PointsDelta))
			printProgress(cmd, res.Update)
			return nil
		},
	}
	return cmd
}

func newTaskRmCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <n|id>",
		Short: "Delete a task",
		Args:  exactlyOne("task"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := taskID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			upd, err := svc.DeleteTask(ctx, u.ID, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render(ui.IconTrash+" Deleted"))
			printProgress(cmd, upd)
			return nil
		},
	}
	return cmd
}

// printProgress reports level and badge changes from an update, if any.
func printProgress(cmd *cobra.Command, upd *engine.UpdateResult) {
	if upd == nil {
		return
	}
	out := cmd.OutOrStdout()
	if upd.LevelUp != nil {
		fmt.Fprintf(out, "%s %s %d → %d\n", ui.IconParty, ui.LevelUp, upd.LevelUp.OldLevel, upd.LevelUp.NewLevel)
	}
	if upd.BadgeGained != nil {
		fmt.Fprintf(out, "%s New badge: %s\n", ui.IconTrophy, ui.Badge(upd.BadgeGained.NewBadge))
	}
	fmt.Fprintln(out, ui.LabelValue("Total", fmt.Sprintf("%d pts, level %d", upd.User.Points, upd.User.Level)))
}

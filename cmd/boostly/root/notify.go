package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func newNotifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notify",
		Aliases: []string{"notifications"},
		Short:   "Read and manage notifications",
	}
	cmd.AddCommand(
		newNotifyListCmd(a),
		newNotifyReadCmd(a),
		newNotifyReadAllCmd(a),
		newNotifyRmCmd(a),
		newNotifyClearCmd(a),
	)
	return cmd
}

func notificationID(ctx context.Context, svc *engine.Service, userID, ref string) (string, error) {
	list, err := svc.ListNotifications(ctx, userID)
	if err != nil {
		return "", err
	}
	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	return resolveRef(ref, ids)
}

func newNotifyListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			list, err := svc.ListNotifications(ctx, u.ID)
			if err != nil {
				return err
			}
			unread, err := svc.UnreadCount(ctx, u.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBell, fmt.Sprintf("Notifications (%d unread)", unread)))
			for i, n := range list {
				marker := " "
				title := n.Title
				if !n.Read {
					marker = ui.Warn.Render("•")
					title = ui.Key.Render(title)
				}
				fmt.Fprintf(out, "%3d %s %s %s\n", i+1, marker, title, ui.Muted.Render(n.CreatedAt.Local().Format("Jan 2 15:04")))
				fmt.Fprintf(out, "      %s\n", n.Message)
			}
			return nil
		},
	}
}

func newNotifyReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read <n|id>",
		Short: "Mark a notification read",
		Args:  exactlyOne("notification"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := notificationID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			return svc.MarkRead(ctx, u.ID, id)
		},
	}
}

func newNotifyReadAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return svc.MarkAllRead(ctx, u.ID)
		},
	}
}

func newNotifyRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <n|id>",
		Short: "Delete a notification",
		Args:  exactlyOne("notification"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			id, err := notificationID(ctx, svc, u.ID, args[0])
			if err != nil {
				return err
			}
			return svc.DeleteNotification(ctx, u.ID, id)
		},
	}
}

func newNotifyClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, u, cleanup, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := svc.ClearNotifications(ctx, u.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Cleared."))
			return nil
		},
	}
}

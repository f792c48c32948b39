package root

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func (a *app) openStore(ctx context.Context) (*storage.SQLStore, string, error) {
	path, err := a.cfg.ResolveDBPath()
	if err != nil {
		return nil, "", err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, "", err
	}
	return storage.NewSQLStore(db, a.log), path, nil
}

func (a *app) openService(ctx context.Context) (*engine.Service, func(), error) {
	store, _, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	loc, err := a.cfg.Location()
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	svc := engine.NewService(store, engine.Options{
		Logger:          a.log,
		Location:        loc,
		MonotonicLevels: a.cfg.Progression.MonotonicLevels,
	})
	cleanup := func() {
		_ = store.Close()
	}
	return svc, cleanup, nil
}

// session opens the service and resolves the logged-in user.
func (a *app) session(ctx context.Context) (*engine.Service, *storage.User, func(), error) {
	svc, cleanup, err := a.openService(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	u, err := svc.CurrentUser(ctx)
	if err != nil {
		cleanup()
		if errors.Is(err, engine.ErrNotAuthenticated) {
			return nil, nil, nil, fmt.Errorf("%w: run `boostly login` first", err)
		}
		return nil, nil, nil, err
	}
	return svc, u, cleanup, nil
}

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Show the database location and what it holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, path, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := storage.Export(ctx, store.Repos())
			if err != nil {
				return err
			}
			accounts, err := store.Repos().Accounts.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconInfo, "Database"))
			fmt.Fprintln(out, ui.LabelValue("Path", path))
			fmt.Fprintln(out, ui.LabelValue("Accounts", len(accounts)))
			fmt.Fprintln(out, ui.LabelValue("Snapshot keys", len(snap)))
			return nil
		},
	}
	return cmd
}

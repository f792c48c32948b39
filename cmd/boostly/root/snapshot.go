package root

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

func newExportCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all data as a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := storage.Export(ctx, store.Repos())
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSON snapshot into an empty database",
		Args:  exactlyOne("file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			var snap storage.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("parse snapshot: %w", err)
			}

			store, _, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := storage.Import(ctx, store, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d keys\n", ui.Good.Render(ui.IconDone+" Imported"), len(snap))
			return nil
		},
	}
	return cmd
}

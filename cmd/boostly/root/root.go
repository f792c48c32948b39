package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/config"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/logging"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/ui"
)

const Version = "0.1.0"

// app holds what PersistentPreRunE resolved for the running command.
type app struct {
	configPath string
	dbFlag     string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "boostly",
		Short:         "Boostly: local-first gamified productivity",
		Long:          "Boostly turns tasks, habits and focus sessions into points, levels and badges.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	cmd.Version = Version
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.config/boostly/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.dbFlag, "db", "", "SQLite database file (overrides config)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging to stderr")

	cmd.AddCommand(
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newStatusCmd(a),
		newTaskCmd(a),
		newHabitCmd(a),
		newFocusCmd(a),
		newNotifyCmd(a),
		newPostCmd(a),
		newFeedCmd(a),
		newLikeCmd(a),
		newCommentCmd(a),
		newCommentsCmd(a),
		newLeaderboardCmd(a),
		newProfileCmd(a),
		newBoardCmd(a),
		newServeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newDBCmd(a),
		newConfigCmd(a),
	)
	return cmd
}

// setup loads configuration and builds the logger. A broken config file falls
// back to the defaults plus environment overrides, with a warning.
func (a *app) setup() error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	a.configPath = path

	cfg, cfgErr := config.Load(path)
	if cfgErr != nil {
		cfg = config.Fallback()
	}
	if a.dbFlag != "" {
		cfg.DB = a.dbFlag
	}
	a.cfg = cfg

	log, err := logging.New(cfg.Log.Level, a.verbose)
	if err != nil {
		return err
	}
	a.log = log
	if cfgErr != nil {
		a.log.Warn("config ignored, using defaults", zap.String("path", path), zap.Error(cfgErr))
	}
	return nil
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/logging"
	"github.com/nhle/todolist/internal/model"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *model.AppConfig
	logger *zap.Logger
)

// rootCmd runs the terminal UI when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "A to-do list grouped by when things are due",
	Long: `todo keeps tasks in a local SQLite database and groups them by due date:
Overdue, Today, Tomorrow, This Week, Next Week, Next Month, Later and No Date.

Run without arguments to open the interactive list.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = model.LoadConfig(configPath)
		if err != nil {
			return err
		}

		logCfg := cfg.Log
		// Subcommands print to the terminal; only the UI needs logs kept off it.
		if cmd != cmd.Root() && !verbose {
			logCfg.File = ""
			logCfg.Level = "warn"
		}
		logger, err = logging.New(logCfg, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		addCmd,
		lsCmd,
		editCmd,
		doneCmd,
		rmCmd,
		listsCmd,
		shareCmd,
		restampCmd,
		loginCmd,
		logoutCmd,
		configCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

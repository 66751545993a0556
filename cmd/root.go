package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zerei-app/zerei/internal/config"
	"github.com/zerei-app/zerei/internal/logging"
	"github.com/zerei-app/zerei/internal/store"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "zerei",
	Short: "Scratch-off card collections in your terminal",
	Long: `Zerei is a command-line tool for collecting themed scratch-off cards.
Acquire a collection, scratch a card to reveal it once you have done what it
asks, and watch your progress and achievements grow.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Diagnostics go to a file so they never draw over the scratch screen
		logPath := filepath.Join(config.GetCacheDir(), "zerei.log")
		l, err := logging.New(verbose, logPath)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("Starting command", zap.String("command", cmd.CommandPath()))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Write debug diagnostics to the log file")
	RootCmd.AddCommand(validateCmd)
}

// openStore opens the progress database
func openStore() (*store.Store, error) {
	return store.Open(config.GetDatabasePath(), logger)
}

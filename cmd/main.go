package main

import (
	"errors"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"airdrop-ledger/internal/config"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

// rootCmd loads configuration from the environment before any subcommand
// runs. See config.Config for the variables it reads.
var rootCmd = &cobra.Command{
	Use:           "airdrop-ledger",
	Short:         "Time-locked token distribution ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		logger = cfg.Log.NewLogger(os.Stdout)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, uploadCmd, eventsCmd)
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	slog.Error("command failed", slog.Any("error", err))
	os.Exit(1)
}

// exitError carries a process exit code out of a command, e.g. 128+signal
// after a graceful shutdown.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return "exit " + strconv.Itoa(e.code)
}

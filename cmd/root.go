package cmd

import (
	"os"

	"github.com/noodle-dev/noodle-bridge/internal/config"
	"github.com/noodle-dev/noodle-bridge/internal/interp"
	"github.com/noodle-dev/noodle-bridge/internal/logging"
	"github.com/noodle-dev/noodle-bridge/internal/securestore"
	"github.com/noodle-dev/noodle-bridge/internal/ui"
	"github.com/spf13/cobra"
)

var version = "0.3.1"

var (
	verbose bool
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "noodle-bridge",
	Short: "noodle-bridge — host bridge for the Noodle desktop app",
	Long: ui.Brand.Sprint(ui.Noodle+" noodle-bridge") + " — run Noodle scripts and keep host secrets\n" +
		ui.Subtle.Sprint("Bridges a GUI host to the Noodle interpreter and an encrypted value store"),
	Version: version + " " + ui.Noodle,
}

func init() {
	rootCmd.SetVersionTemplate("noodle-bridge {{ .Version }}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print progress detail")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Print dispatch-level detail")

	rootCmd.AddCommand(
		secureCmd(),
		runCmd(),
		pythonCmd(),
		serveCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func log() logging.Logger {
	return logging.Logger{Verbose: verbose, Debug: debug}
}

func newRunner() *interp.Runner {
	return interp.New(config.Load())
}

func openStore() *securestore.FileStore {
	st, err := securestore.Open(config.Load().StorePath())
	if err != nil {
		ui.Bad.Printf("noodle-bridge: %v\n", err)
		os.Exit(1)
	}
	return st
}

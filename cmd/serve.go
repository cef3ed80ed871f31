package cmd

import (
	"os"

	"github.com/noodle-dev/noodle-bridge/internal/bridge"
	"github.com/noodle-dev/noodle-bridge/internal/ui"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve host commands over stdin/stdout",
		Long: "Reads newline-delimited JSON requests from stdin and answers on\n" +
			"stdout. This is the surface the desktop host talks to.",
		Run: func(cmd *cobra.Command, args []string) {
			srv := &bridge.Server{
				Store: openStore(),
				Exec:  newRunner(),
				Log:   log(),
			}

			if err := srv.Serve(cmd.Context(), os.Stdin, os.Stdout); err != nil {
				ui.Bad.Printf("noodle-bridge: serve: %v\n", err)
				os.Exit(1)
			}
		},
	}
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/noodle-dev/noodle-bridge/internal/interp"
	"github.com/noodle-dev/noodle-bridge/internal/ui"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var inline string

	cmd := &cobra.Command{
		Use:   "run [file.nl]",
		Short: "Run a Noodle script through the interpreter",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if inline == "" && len(args) == 0 {
				ui.Bad.Println("noodle-bridge: nothing to run — pass a file or -c 'code'")
				os.Exit(1)
			}

			r := newRunner()
			log().Infof("interpreter %s, core dir %s", r.Interpreter, r.CoreDir)

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
			sp.Suffix = " running Noodle script..."
			sp.Start()

			var out string
			var err error
			if inline != "" {
				out, err = r.ExecuteInline(cmd.Context(), inline)
			} else {
				out, err = r.ExecuteNoodleFile(cmd.Context(), args[0])
			}
			sp.Stop()

			if err != nil {
				printRunError(err)
				os.Exit(1)
			}
			fmt.Print(out)
		},
	}

	cmd.Flags().StringVarP(&inline, "code", "c", "", "Run script text instead of a file")
	return cmd
}

func printRunError(err error) {
	var exit *interp.ExitError
	switch {
	case errors.Is(err, interp.ErrNotFound):
		ui.Bad.Printf("noodle-bridge: %v\n", err)
	case errors.As(err, &exit):
		ui.Bad.Println("noodle-bridge: script failed")
		fmt.Fprint(os.Stderr, exit.Stderr)
	default:
		ui.Bad.Printf("noodle-bridge: %v\n", err)
	}
}

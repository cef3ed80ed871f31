package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func pythonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "python <file.py>",
		Short: "Run a Python file with the configured interpreter",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			r := newRunner()

			out, err := r.ExecutePythonFile(cmd.Context(), args[0])
			if err != nil {
				printRunError(err)
				os.Exit(1)
			}
			fmt.Print(out)
		},
	}
}

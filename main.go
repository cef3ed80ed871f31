package main

import (
	"os"

	"github.com/noodle-dev/noodle-bridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

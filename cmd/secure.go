package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/noodle-dev/noodle-bridge/internal/securestore"
	"github.com/noodle-dev/noodle-bridge/internal/ui"
	"github.com/spf13/cobra"
)

func secureCmd() *cobra.Command {
	secureCmd := &cobra.Command{
		Use:   "secure",
		Short: "Manage values in the encrypted store",
	}

	secureCmd.AddCommand(
		secureSetCmd(),
		secureGetCmd(),
		secureRmCmd(),
		secureListCmd(),
	)

	return secureCmd
}

func secureSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> [value]",
		Short: "Store a value in the encrypted store",
		Args:  cobra.RangeArgs(1, 2),
		Run: func(cmd *cobra.Command, args []string) {
			key := args[0]

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				fmt.Printf("  Enter value for %s: ", ui.Brand.Sprint(key))
				reader := bufio.NewReader(os.Stdin)
				value, _ = reader.ReadString('\n')
				value = strings.TrimSpace(value)
			}

			if value == "" {
				ui.Warn.Printf("  %s Empty value — nothing stored\n", ui.WarnIcon())
				return
			}

			if err := openStore().Set(key, value); err != nil {
				ui.Bad.Printf("  Failed to store value: %v\n", err)
				os.Exit(1)
			}

			ui.Good.Printf("  %s %s stored\n", ui.StatusIcon(true), key)
		},
	}
}

func secureGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Read a value from the encrypted store",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			key := args[0]

			val, found, err := openStore().Get(key)
			if err != nil {
				ui.Bad.Printf("  Failed to read value: %v\n", err)
				os.Exit(1)
			}
			if !found {
				ui.Subtle.Printf("  %s is not set\n", key)
				return
			}

			fmt.Println(val)
		},
	}
}

func secureRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <key>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a value from the encrypted store",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			key := args[0]

			if err := openStore().Delete(key); err != nil {
				ui.Bad.Printf("  Failed to remove value: %v\n", err)
				os.Exit(1)
			}

			ui.Good.Printf("  %s %s removed\n", ui.StatusIcon(true), key)
		},
	}
}

func secureListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored keys (masked values)",
		Run: func(cmd *cobra.Command, args []string) {
			st := openStore()

			ui.Banner("stored values")

			keys, err := st.List()
			if err != nil {
				ui.Bad.Printf("  Failed to list keys: %v\n", err)
				os.Exit(1)
			}
			if len(keys) == 0 {
				ui.Subtle.Println("  The store is empty")
				return
			}

			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				val, _, err := st.Get(key)
				if err != nil {
					ui.Bad.Printf("  Failed to read %s: %v\n", key, err)
					os.Exit(1)
				}
				rows = append(rows, []string{key, securestore.Mask(val)})
			}
			ui.Table([]string{"KEY", "VALUE"}, rows)
		},
	}
}

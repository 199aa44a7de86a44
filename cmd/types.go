package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/docflow/convert"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List supported conversions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, t := range convert.Types() {
			exts := convert.Extensions(t)
			for i, e := range exts {
				exts[i] = "." + e
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", t, strings.Join(exts, " "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docflow",
	Short: "Convert rich-text documents into paginated PDF",
	Long: `docflow extracts paragraphs from DOCX, Markdown, RTF, HTML and plain-text
files and lays them out onto fixed-size PDF pages.

Examples:
  docflow convert report.docx
  docflow convert notes.md -o out/ --unique
  docflow convert letter.docx --data customer.json
  docflow types`,
	SilenceUsage:      true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

var (
	configFile string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./docflow.yaml or <user config dir>/docflow/docflow.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

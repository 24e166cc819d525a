package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var investigateTopN int

var investigateCmd = &cobra.Command{
	Use:   "investigate [path]",
	Short: "Summarize a built project: core functions, skeletons, directories",
	Long: `investigate reports the total function/method count, the top-N
functions ranked by out-degree ("core" functions), a bodies-stripped
skeleton of every indexed file, and the set of contributing
directories.

Examples:
  codegraph investigate
  codegraph investigate ./src --top-n 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInvestigate,
}

func init() {
	rootCmd.AddCommand(investigateCmd)
	investigateCmd.Flags().IntVar(&investigateTopN, "top-n", 10, "Number of core functions to report")
}

func runInvestigate(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	_, ps, _, err := openProject(dir)
	if err != nil {
		return err
	}

	summary := ps.Investigate(investigateTopN)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encode investigate summary: %w", err)
	}
	return nil
}

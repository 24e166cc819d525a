package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anthropics/codegraph/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Register a project and load its persisted graph, if any",
	Long: `init resolves a project directory to its project_id and hydrates
whatever graph was last persisted for it under the configured state
root. It does not parse anything; run 'codegraph build' for that.

Examples:
  codegraph init           # register/resolve the current directory
  codegraph init ./myrepo`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	cfg, err := loadConfig(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	reg, err := store.OpenRegistry(cfg.StateRoot)
	if err != nil {
		return err
	}
	meta, err := reg.Resolve(dir)
	if err != nil {
		return err
	}

	backend := store.BackendText
	if cfg.Serialization == "binary" {
		backend = store.BackendBinary
	}
	ps, err := store.Open(cfg.StateRoot, meta.ProjectID, backend)
	if err != nil {
		return err
	}

	stats := ps.GetStats()
	fmt.Printf("project_id: %s\n", meta.ProjectID)
	fmt.Printf("project_dir: %s\n", meta.ProjectDir)
	fmt.Printf("first_parsed_at: %s\n", meta.FirstParsedAt)
	fmt.Printf("last_parsed_at: %s\n", meta.LastParsedAt)
	fmt.Printf("graph: entities=%d edges=%d files_indexed=%d\n", stats.EntityCount, stats.EdgeCount, stats.FileCount)
	return nil
}

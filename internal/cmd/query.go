package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anthropics/codegraph/internal/model"
	"github.com/anthropics/codegraph/internal/store"
)

var queryProjectDir string

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a built call graph",
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.PersistentFlags().StringVar(&queryProjectDir, "project", ".", "Project directory the graph was built from")
	queryCmd.AddCommand(queryCallGraphCmd, queryHierarchicalGraphCmd, querySnippetCmd, querySkeletonCmd)
}

// --- call-graph ---

var queryCallGraphMaxDepth int

var queryCallGraphCmd = &cobra.Command{
	Use:   "call-graph <file> [function]",
	Short: "Show an entity's callers and callees",
	Long: `call-graph resolves an entity by file path and (optional) function
name, then reports its direct callers and callees. When function is
omitted, every entity declared in the file is reported.

Examples:
  codegraph query call-graph a.py
  codegraph query call-graph a.py f`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runQueryCallGraph,
}

func init() {
	queryCallGraphCmd.Flags().IntVar(&queryCallGraphMaxDepth, "max-depth", model.DefaultCallChainDepth, "Maximum call-chain depth (hard cap 16)")
}

type callGraphEntity struct {
	Entity  *model.Entity          `json:"entity"`
	Callers []*model.Entity        `json:"callers"`
	Callees []*model.Entity        `json:"callees"`
	Tree    *model.HierarchicalNode `json:"call_tree,omitempty"`
}

func runQueryCallGraph(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	functionName := ""
	if len(args) == 2 {
		functionName = args[1]
	}

	_, ps, _, err := openProject(queryProjectDir)
	if err != nil {
		return err
	}

	var entities []*model.Entity
	if functionName != "" {
		e, ok := ps.FindEntityByNameInFile(filePath, functionName)
		if !ok {
			return fmt.Errorf("%w: function %q not found in %s", store.ErrUnknownEntity, functionName, filePath)
		}
		entities = []*model.Entity{e}
	} else {
		entities = ps.EntitiesInFile(filePath)
	}

	results := make([]callGraphEntity, 0, len(entities))
	for _, e := range entities {
		result := callGraphEntity{
			Entity:  e,
			Callers: ps.CallersOf(e.ID),
			Callees: ps.CalleesOf(e.ID),
		}
		if queryCallGraphMaxDepth > 0 {
			if tree, err := ps.CallChain(e.ID, queryCallGraphMaxDepth); err == nil {
				result.Tree = tree
			}
		}
		results = append(results, result)
	}

	return encodeJSON(results)
}

// --- hierarchical-graph ---

var (
	hierRootFunction string
	hierFilePath     string
	hierMaxDepth     int
)

var queryHierarchicalGraphCmd = &cobra.Command{
	Use:   "hierarchical-graph",
	Short: "Walk the bounded-depth call tree rooted at a function",
	Long: `hierarchical-graph resolves --root-function within --file, then
returns the HierarchicalNode tree produced by a bounded-depth,
cycle-breaking walk of its callees.

Examples:
  codegraph query hierarchical-graph --file a.py --root-function f
  codegraph query hierarchical-graph --file a.py --root-function f --max-depth 5`,
	RunE: runQueryHierarchicalGraph,
}

func init() {
	queryHierarchicalGraphCmd.Flags().StringVar(&hierFilePath, "file", "", "File path containing the root function (required)")
	queryHierarchicalGraphCmd.Flags().StringVar(&hierRootFunction, "root-function", "", "Root function name (required)")
	queryHierarchicalGraphCmd.Flags().IntVar(&hierMaxDepth, "max-depth", model.DefaultCallChainDepth, "Maximum depth (hard cap 16)")
	queryHierarchicalGraphCmd.MarkFlagRequired("file")
	queryHierarchicalGraphCmd.MarkFlagRequired("root-function")
}

func runQueryHierarchicalGraph(cmd *cobra.Command, args []string) error {
	_, ps, _, err := openProject(queryProjectDir)
	if err != nil {
		return err
	}

	root, ok := ps.FindEntityByNameInFile(hierFilePath, hierRootFunction)
	if !ok {
		return fmt.Errorf("%w: function %q not found in %s", store.ErrUnknownEntity, hierRootFunction, hierFilePath)
	}

	tree, err := ps.CallChain(root.ID, hierMaxDepth)
	if err != nil {
		return err
	}
	return encodeJSON(tree)
}

// --- snippet ---

var snippetContextLines int

var querySnippetCmd = &cobra.Command{
	Use:   "snippet <file> [function]",
	Short: "Print the source snippet for a function (or whole file)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runQuerySnippet,
}

func init() {
	querySnippetCmd.Flags().IntVar(&snippetContextLines, "context-lines", 0, "Extra lines of context on each side")
}

func runQuerySnippet(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	functionName := ""
	if len(args) == 2 {
		functionName = args[1]
	}

	_, ps, _, err := openProject(queryProjectDir)
	if err != nil {
		return err
	}

	snippet, err := ps.CodeSnippet(filePath, functionName, snippetContextLines)
	if err != nil {
		return err
	}
	fmt.Println(snippet)
	return nil
}

// --- skeleton ---

var querySkeletonCmd = &cobra.Command{
	Use:   "skeleton <file>...",
	Short: "Print a bodies-stripped outline for one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuerySkeleton,
}

func runQuerySkeleton(cmd *cobra.Command, args []string) error {
	_, ps, _, err := openProject(queryProjectDir)
	if err != nil {
		return err
	}

	for _, f := range args {
		fmt.Print(ps.CodeSkeleton(f))
	}
	return nil
}

func encodeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Package cmd implements codegraph's cobra command surface: build, init,
// query, investigate, draw-call-graph, and serve, mirroring the HTTP
// routes in internal/httpapi (§6).
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/anthropics/codegraph/internal/config"
)

var (
	// Version is the current version of codegraph.
	Version = "0.1.0"

	verbose    bool
	configPath string
	agentHelp  bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "codegraph",
	Short: "Cross-language call-graph builder and query server",
	Long: `codegraph parses source trees with tree-sitter, resolves call sites
into a directed multigraph of code entities, and answers structural
queries over the result: call chains, hierarchical walks, code
skeletons, snippets, and repository investigations.

Run 'codegraph build' to parse a project, then use 'codegraph query'
or 'codegraph serve' to explore the resulting graph.`,
	Version:           Version,
	PersistentPreRunE: initLogger,
	RunE: func(cmd *cobra.Command, args []string) error {
		if agentHelp {
			outputAgentHelp(cmd)
			return nil
		}
		return cmd.Help()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func initLogger(cmd *cobra.Command, args []string) error {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	logger = l
	return nil
}

// sugar returns the shared logger's sugared form, falling back to a
// no-op logger if PersistentPreRunE never ran (e.g. unit tests invoking
// run* functions directly).
func sugar() *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

func loadConfig(workDir string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load(workDir)
}

// Execute adds all child commands to the root command and runs it. It
// is called by main.main() once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a codegraph config file (default: .codegraph/config.yaml)")
	rootCmd.Flags().BoolVar(&agentHelp, "agent-help", false, "Print machine-readable JSON describing every command and flag, then exit")
}

// commandInfo is one node of the --agent-help command tree.
type commandInfo struct {
	Name        string        `json:"name"`
	Usage       string        `json:"usage"`
	Description string        `json:"description,omitempty"`
	Flags       []flagInfo    `json:"flags,omitempty"`
	Subcommands []commandInfo `json:"subcommands,omitempty"`
}

type flagInfo struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
}

// outputAgentHelp prints the full command tree as JSON so that an
// automated caller can discover the CLI surface without scraping --help
// text.
func outputAgentHelp(cmd *cobra.Command) {
	root := buildCommandInfo(cmd.Root())
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]interface{}{
		"version":  Version,
		"commands": root,
	})
}

func buildCommandInfo(cmd *cobra.Command) commandInfo {
	info := commandInfo{
		Name:        cmd.Name(),
		Usage:       cmd.UseLine(),
		Description: cmd.Short,
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		info.Flags = append(info.Flags, flagInfo{
			Name:        f.Name,
			Shorthand:   f.Shorthand,
			Description: f.Usage,
			Type:        f.Value.Type(),
			Default:     f.DefValue,
		})
	})
	for _, sub := range cmd.Commands() {
		if !sub.Hidden {
			info.Subcommands = append(info.Subcommands, buildCommandInfo(sub))
		}
	}
	return info
}

// Command blogwiki is a terminal blog reader. It imports posts from RSS and
// Atom feeds into a local SQLite store and pages through them in a TUI.
//
// Usage:
//
//	blogwiki                 Browse posts in the TUI
//	blogwiki import          Fetch enabled sources into the store
//	blogwiki list            Print published posts page by page
//	blogwiki show <slug>     Print one post
//	blogwiki hide <slug>     Unpublish a post
//	blogwiki unhide <slug>   Publish a hidden post again
//	blogwiki version         Print version information
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abelbrown/blogwiki/internal/config"
	"github.com/abelbrown/blogwiki/internal/store"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	pageSize   int
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "blogwiki",
		Short:        "Terminal blog reader",
		Long:         "blogwiki imports blog posts from RSS and Atom feeds and lets you read them a page at a time.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	root.PersistentFlags().IntVar(&opts.pageSize, "page-size", 0, "posts per page (overrides config)")

	root.AddCommand(
		newImportCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newPublishCmd(opts, "hide", false),
		newPublishCmd(opts, "unhide", true),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blogwiki %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if opts.pageSize < 0 {
		return nil, fmt.Errorf("--page-size must be positive, got %d", opts.pageSize)
	}
	if opts.pageSize > 0 {
		cfg.PageSize = opts.pageSize
	}
	return cfg, nil
}

// openStore opens the configured database, creating its directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.DatabasePath()
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

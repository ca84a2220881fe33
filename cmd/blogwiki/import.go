package main

import (
	"fmt"

	"github.com/abelbrown/blogwiki/internal/config"
	"github.com/abelbrown/blogwiki/internal/coord"
	"github.com/abelbrown/blogwiki/internal/fetch"
	"github.com/abelbrown/blogwiki/internal/store"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Fetch enabled feeds into the local store",
		Long: `Fetch every enabled source from the config and save new posts.

Posts already in the store are refreshed in place. A failing source is
reported and skipped; the command only fails when every source fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			out := cmd.OutOrStdout()
			if len(cfg.EnabledSources()) == 0 {
				fmt.Fprintln(out, "No sources enabled.")
				return nil
			}

			ctx := cmd.Context()
			results := newCoordinator(cfg, st).ImportAll(ctx, nil)

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "  [warn] %s: %v\n", r.Source, r.Err)
					continue
				}
				fmt.Fprintf(out, "  %-24s %3d fetched, %3d new\n", r.Source, r.Fetched, r.NewPosts)
			}

			total, err := st.Count(ctx)
			if err != nil {
				return fmt.Errorf("counting posts: %w", err)
			}
			fmt.Fprintf(out, "%d post(s) in store.\n", total)

			if failed == len(results) {
				return fmt.Errorf("all %d source(s) failed", failed)
			}
			return nil
		},
	}
}

func newCoordinator(cfg *config.Config, st *store.Store) *coord.Coordinator {
	f := fetch.NewFetcher(cfg.ImportTimeout(), cfg.Import.RatePerSecond)
	return coord.NewCoordinator(st, f, cfg.EnabledSources(), coord.Options{
		Timeout:       cfg.ImportTimeout(),
		MaxConcurrent: cfg.Import.MaxConcurrent,
		Interval:      cfg.ImportInterval(),
	})
}

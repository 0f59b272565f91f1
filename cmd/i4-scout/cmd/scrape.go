package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaearon/i4-scout/internal/config"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

func scrapeCmd() *cobra.Command {
	var (
		source      string
		bypassCache bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape pass",
		Long: "Runs a single scrape pass for one configured source, or for all\n" +
			"sources when --source is not given. Each pass fetches the search\n" +
			"feeds, reconciles every listing, and applies the delisting lifecycle.",
		Example: `  # One pass over every configured source
  i4-scout scrape

  # One source only, forcing fresh fetches
  i4-scout scrape --source autoscout24 --bypass-cache

  # Exercise a pass without writing to the database
  i4-scout scrape --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, dryRun)
			if err != nil {
				return err
			}
			defer a.close()

			sources, err := selectSources(a.cfg, source)
			if err != nil {
				return err
			}

			cache, err := a.cache(ctx, bypassCache)
			if err != nil {
				return err
			}

			rec := a.reconciler()
			summaries := make([]domain.PassSummary, 0, len(sources))
			for _, src := range sources {
				summary, err := a.runner(src, cache, rec).RunPass(ctx)
				if err != nil {
					return fmt.Errorf("pass for %s: %w", src.Source, err)
				}
				summaries = append(summaries, summary)
			}

			if jsonOutput() {
				return outputJSON(summaries)
			}
			return printPassSummaries(summaries)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "run only this source")
	cmd.Flags().BoolVar(&bypassCache, "bypass-cache", false, "skip cache reads, still populate the cache")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "use an in-memory store, leave the database untouched")

	return cmd
}

func selectSources(cfg *config.Config, source string) ([]config.SourceConfig, error) {
	if source == "" {
		if len(cfg.Scrape.Sources) == 0 {
			return nil, fmt.Errorf("no scrape sources configured")
		}
		return cfg.Scrape.Sources, nil
	}
	for _, src := range cfg.Scrape.Sources {
		if src.Source == domain.Source(source) {
			return []config.SourceConfig{src}, nil
		}
	}
	return nil, fmt.Errorf("source %q is not configured", source)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rescoreCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rescore",
		Short: "Re-score all listings",
		Long: "Re-runs the option matcher and scorer over the stored raw option\n" +
			"data of every listing, typically after editing the option catalog.\n" +
			"Document-sourced option associations are preserved.",
		Example: `  i4-scout rescore`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, dryRun)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := a.reconciler().Rescore(ctx)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(report)
			}

			fmt.Printf("Rescored %d listings: %d score changes, %d qualification changes.\n",
				report.Scanned, report.ScoreChanged, report.QualificationChanged)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "use an in-memory store, leave the database untouched")

	return cmd
}

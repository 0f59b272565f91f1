package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aaearon/i4-scout/internal/enrich"
)

func enrichCmd() *cobra.Command {
	var textFile string

	cmd := &cobra.Command{
		Use:   "enrich [listing-id]",
		Short: "Attach options from an equipment document",
		Long: "Matches already-extracted document text (for example from a dealer\n" +
			"equipment sheet) against the option catalog and attaches any newly\n" +
			"found options to the listing, then re-scores it. Options found this\n" +
			"way survive later scrapes of the listing.",
		Example: `  i4-scout enrich 6a1f... --text equipment-sheet.txt`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if textFile == "" {
				return fmt.Errorf("--text is required")
			}
			data, err := os.ReadFile(textFile) //nolint:gosec // operator-supplied path
			if err != nil {
				return fmt.Errorf("reading document text: %w", err)
			}

			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			enricher := enrich.New(a.store, a.catalog,
				enrich.WithLogger(a.log),
				enrich.WithWeights(a.cfg.Scoring.Weights()),
			)

			report, err := enricher.Enrich(ctx, args[0], string(data))
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(report)
			}

			if len(report.NewOptions) == 0 {
				fmt.Println("No new options found.")
			} else {
				fmt.Printf("Attached %d options: %s\n",
					len(report.NewOptions), strings.Join(report.NewOptions, ", "))
			}
			fmt.Printf("Score: %.1f (qualified: %v)\n", report.Score, report.IsQualified)
			return nil
		},
	}

	cmd.Flags().StringVar(&textFile, "text", "", "path to the extracted document text")

	return cmd
}

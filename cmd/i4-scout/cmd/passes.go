package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func passesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "passes",
		Short: "Show recent scrape passes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			passes, err := a.store.ListScrapePasses(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(passes)
			}

			if len(passes) == 0 {
				fmt.Println("No scrape passes recorded.")
				return nil
			}

			return printPassesTable(passes)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of passes to show")

	return cmd
}

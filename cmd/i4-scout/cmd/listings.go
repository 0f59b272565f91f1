package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aaearon/i4-scout/internal/store"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

func listingsCmd() *cobra.Command {
	listingsRoot := &cobra.Command{
		Use:   "listings",
		Short: "Query listings",
		Long: "Query and inspect reconciled listings, with filters for source,\n" +
			"qualification, score, price, mileage, year, and lifecycle status.",
	}

	listingsRoot.AddCommand(
		listingsListCmd(),
		listingsShowCmd(),
	)

	return listingsRoot
}

func listingsListCmd() *cobra.Command {
	var (
		source     string
		status     string
		qualified  bool
		minScore   float64
		priceMin   int
		priceMax   int
		mileageMax int
		yearMin    int
		search     string
		limit      int
		offset     int
		sortBy     string
		ascending  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List listings with optional filters",
		Example: `  # All active listings, best score first
  i4-scout listings list

  # Qualified listings under 50k with less than 30000 km
  i4-scout listings list --qualified --price-max 50000 --mileage-max 30000

  # Delisted listings from one source
  i4-scout listings list --source autoscout24 --status delisted

  # Cheapest first with pagination
  i4-scout listings list --sort price --asc --limit 20 --offset 40`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			q := &store.ListingQuery{
				QualifiedOnly: qualified,
				Search:        search,
				Limit:         limit,
				Offset:        offset,
				OrderBy:       sortBy,
				Ascending:     ascending,
			}
			if source != "" {
				src := domain.Source(source)
				q.Source = &src
			}
			if status != "" {
				st := domain.ListingStatus(status)
				q.Status = &st
			}
			flags := cmd.Flags()
			if flags.Changed("min-score") {
				q.MinScore = &minScore
			}
			if flags.Changed("price-min") {
				q.PriceMin = &priceMin
			}
			if flags.Changed("price-max") {
				q.PriceMax = &priceMax
			}
			if flags.Changed("mileage-max") {
				q.MileageMax = &mileageMax
			}
			if flags.Changed("year-min") {
				q.YearMin = &yearMin
			}

			listings, total, err := a.store.ListListings(ctx, q)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(listings)
			}

			if len(listings) == 0 {
				fmt.Println("No listings found.")
				return nil
			}

			fmt.Printf("Showing %d of %d listings\n\n", len(listings), total)
			return printListingsTable(listings)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "filter by source")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (active, delisted)")
	cmd.Flags().BoolVar(&qualified, "qualified", false, "only qualified listings")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum match score")
	cmd.Flags().IntVar(&priceMin, "price-min", 0, "minimum price in EUR")
	cmd.Flags().IntVar(&priceMax, "price-max", 0, "maximum price in EUR")
	cmd.Flags().IntVar(&mileageMax, "mileage-max", 0, "maximum mileage in km")
	cmd.Flags().IntVar(&yearMin, "year-min", 0, "minimum first registration year")
	cmd.Flags().StringVar(&search, "search", "", "substring match on title and description")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	cmd.Flags().StringVar(&sortBy, "sort", "", "sort column (score, price, mileage, first_seen, last_seen)")
	cmd.Flags().BoolVar(&ascending, "asc", false, "sort ascending")

	return cmd
}

func listingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one listing with its options and price history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, false)
			if err != nil {
				return err
			}
			defer a.close()

			l, err := a.store.GetListingByID(ctx, args[0])
			if err != nil {
				return err
			}

			opts, err := a.store.GetListingOptions(ctx, l.ID)
			if err != nil {
				return err
			}
			l.MatchedOptions = opts

			history, err := a.store.GetPriceHistory(ctx, l.ID)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(struct {
					Listing      *domain.Listing            `json:"listing"`
					PriceHistory []domain.PriceHistoryEntry `json:"price_history"`
				}{l, history})
			}

			return printListingDetail(l, history)
		},
	}
}

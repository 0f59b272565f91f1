package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/aaearon/i4-scout/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func TestListingQuery_ToSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		query         ListingQuery
		wantCountSQL  string
		wantArgs      []any
		wantDataHas   []string // substrings that must appear in dataSQL
		wantDataNotIn []string // substrings that must NOT appear
	}{
		{
			name:  "empty query uses defaults",
			query: ListingQuery{},
			wantDataHas: []string{
				"FROM listings",
				"ORDER BY match_score DESC NULLS LAST",
				"LIMIT 50",
				"OFFSET 0",
			},
			wantDataNotIn: []string{"WHERE"},
			wantCountSQL:  "SELECT COUNT(*) FROM listings",
			wantArgs:      nil,
		},
		{
			name: "source filter",
			query: ListingQuery{
				Source: ptr(domain.SourceAutoScout24DE),
			},
			wantDataHas:  []string{"WHERE source = $1"},
			wantCountSQL: "SELECT COUNT(*) FROM listings WHERE source = $1",
			wantArgs:     []any{"autoscout24_de"},
		},
		{
			name: "status filter",
			query: ListingQuery{
				Status: ptr(domain.StatusDelisted),
			},
			wantDataHas:  []string{"WHERE status = $1"},
			wantCountSQL: "SELECT COUNT(*) FROM listings WHERE status = $1",
			wantArgs:     []any{"delisted"},
		},
		{
			name: "qualified only adds literal condition without args",
			query: ListingQuery{
				QualifiedOnly: true,
			},
			wantDataHas:  []string{"WHERE is_qualified = TRUE"},
			wantCountSQL: "SELECT COUNT(*) FROM listings WHERE is_qualified = TRUE",
			wantArgs:     nil,
		},
		{
			name: "min score filter",
			query: ListingQuery{
				MinScore: ptr(70.0),
			},
			wantDataHas:  []string{"WHERE match_score >= $1"},
			wantCountSQL: "SELECT COUNT(*) FROM listings WHERE match_score >= $1",
			wantArgs:     []any{70.0},
		},
		{
			name: "price range filters",
			query: ListingQuery{
				PriceMin: ptr(40000),
				PriceMax: ptr(65000),
			},
			wantDataHas: []string{
				"price >= $1",
				"price <= $2",
				" AND ",
			},
			wantCountSQL: "SELECT COUNT(*) FROM listings WHERE price >= $1 AND price <= $2",
			wantArgs:     []any{40000, 65000},
		},
		{
			name: "mileage and year filters",
			query: ListingQuery{
				MileageMax: ptr(50000),
				YearMin:    ptr(2022),
			},
			wantDataHas: []string{
				"mileage_km <= $1",
				"year >= $2",
			},
			wantCountSQL: "SELECT COUNT(*) FROM listings WHERE mileage_km <= $1 AND year >= $2",
			wantArgs:     []any{50000, 2022},
		},
		{
			name: "search matches title and description with one arg",
			query: ListingQuery{
				Search: "frozen grey",
			},
			wantDataHas:  []string{"(title ILIKE $1 OR description ILIKE $1)"},
			wantCountSQL: "SELECT COUNT(*) FROM listings WHERE (title ILIKE $1 OR description ILIKE $1)",
			wantArgs:     []any{"%frozen grey%"},
		},
		{
			name: "order by price ascending",
			query: ListingQuery{
				OrderBy:   "price",
				Ascending: true,
			},
			wantDataHas:  []string{"ORDER BY price ASC NULLS LAST"},
			wantCountSQL: "SELECT COUNT(*) FROM listings",
			wantArgs:     nil,
		},
		{
			name: "unknown order by falls back to score",
			query: ListingQuery{
				OrderBy: "seller_rating",
			},
			wantDataHas:  []string{"ORDER BY match_score DESC NULLS LAST"},
			wantCountSQL: "SELECT COUNT(*) FROM listings",
			wantArgs:     nil,
		},
		{
			name: "limit is clamped to maximum",
			query: ListingQuery{
				Limit: 10000,
			},
			wantDataHas:  []string{"LIMIT 500"},
			wantCountSQL: "SELECT COUNT(*) FROM listings",
			wantArgs:     nil,
		},
		{
			name: "negative offset is clamped to zero",
			query: ListingQuery{
				Offset: -10,
			},
			wantDataHas:  []string{"OFFSET 0"},
			wantCountSQL: "SELECT COUNT(*) FROM listings",
			wantArgs:     nil,
		},
		{
			name: "combined filters keep positional order",
			query: ListingQuery{
				Source:        ptr(domain.SourceAutoScout24NL),
				QualifiedOnly: true,
				PriceMax:      ptr(60000),
				Limit:         10,
				Offset:        20,
			},
			wantDataHas: []string{
				"source = $1",
				"is_qualified = TRUE",
				"price <= $2",
				"LIMIT 10",
				"OFFSET 20",
			},
			wantCountSQL: "SELECT COUNT(*) FROM listings WHERE source = $1 AND is_qualified = TRUE AND price <= $2",
			wantArgs:     []any{"autoscout24_nl", 60000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dataSQL, countSQL, args := tt.query.ToSQL()

			for _, want := range tt.wantDataHas {
				assert.Contains(t, dataSQL, want)
			}
			for _, notWant := range tt.wantDataNotIn {
				assert.NotContains(t, dataSQL, notWant)
			}
			require.Equal(t, tt.wantCountSQL, countSQL)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

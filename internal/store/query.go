package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// validOrderBy maps allowed OrderBy values to their SQL column names.
// Direction is applied separately from Ascending.
var validOrderBy = map[string]string{
	"score":      "match_score",
	"price":      "price",
	"mileage":    "mileage_km",
	"first_seen": "first_seen_at",
	"last_seen":  "last_seen_at",
}

const defaultOrderColumn = "match_score"

const baseListingsSelect = `SELECT ` + listingColumns + `
FROM listings`

const countListingsSelect = "SELECT COUNT(*) FROM listings"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a
// listing query. It returns two SQL strings (one for the data query,
// one for the count query) and the positional parameters.
func (q *ListingQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.Source != nil {
		conditions = append(conditions, fmt.Sprintf("source = $%d", paramIdx))
		args = append(args, string(*q.Source))
		paramIdx++
	}

	if q.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", paramIdx))
		args = append(args, string(*q.Status))
		paramIdx++
	}

	if q.QualifiedOnly {
		conditions = append(conditions, "is_qualified = TRUE")
	}

	if q.MinScore != nil {
		conditions = append(conditions, fmt.Sprintf("match_score >= $%d", paramIdx))
		args = append(args, *q.MinScore)
		paramIdx++
	}

	if q.PriceMin != nil {
		conditions = append(conditions, fmt.Sprintf("price >= $%d", paramIdx))
		args = append(args, *q.PriceMin)
		paramIdx++
	}

	if q.PriceMax != nil {
		conditions = append(conditions, fmt.Sprintf("price <= $%d", paramIdx))
		args = append(args, *q.PriceMax)
		paramIdx++
	}

	if q.MileageMax != nil {
		conditions = append(conditions, fmt.Sprintf("mileage_km <= $%d", paramIdx))
		args = append(args, *q.MileageMax)
		paramIdx++
	}

	if q.YearMin != nil {
		conditions = append(conditions, fmt.Sprintf("year >= $%d", paramIdx))
		args = append(args, *q.YearMin)
		paramIdx++
	}

	if q.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR description ILIKE $%d)", paramIdx, paramIdx,
		))
		args = append(args, "%"+q.Search+"%")
		paramIdx++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Order by
	column := defaultOrderColumn
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			column = col
		}
	}
	direction := "DESC"
	if q.Ascending {
		direction = "ASC"
	}
	orderClause := fmt.Sprintf("%s %s NULLS LAST", column, direction)

	// Limit
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseListingsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countListingsSelect + whereClause

	return dataSQL, countSQL, args
}

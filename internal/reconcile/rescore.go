package reconcile

import (
	"context"
	"fmt"

	"github.com/aaearon/i4-scout/internal/match"
	"github.com/aaearon/i4-scout/internal/store"
	domain "github.com/aaearon/i4-scout/pkg/types"
)

const rescorePageSize = 200

// RescoreReport summarizes a full re-scoring run.
type RescoreReport struct {
	Scanned              int
	ScoreChanged         int
	QualificationChanged int
}

// Rescore re-runs the matcher and scorer over the stored raw option
// data of every listing, typically after a catalog edit. Scrape-sourced
// associations are rebuilt from the stored raw options; pdf-sourced
// associations are preserved and still count toward the score. Only the
// score and qualification columns change on the listing itself.
func (r *Reconciler) Rescore(ctx context.Context) (RescoreReport, error) {
	var report RescoreReport

	for offset := 0; ; offset += rescorePageSize {
		page, _, err := r.store.ListListings(ctx, &store.ListingQuery{
			OrderBy:   "first_seen",
			Ascending: true,
			Limit:     rescorePageSize,
			Offset:    offset,
		})
		if err != nil {
			return report, fmt.Errorf("listing page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		for i := range page {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if err := r.rescoreListing(ctx, &page[i], &report); err != nil {
				return report, err
			}
		}
	}

	r.log.Info("rescore complete",
		"scanned", report.Scanned,
		"score_changed", report.ScoreChanged,
		"qualification_changed", report.QualificationChanged,
	)

	return report, nil
}

func (r *Reconciler) rescoreListing(ctx context.Context, l *domain.Listing, report *RescoreReport) error {
	report.Scanned++

	freeText := l.Title
	if l.Description != "" {
		freeText += " " + l.Description
	}
	res := match.Options(l.RawOptions, freeText, r.catalog)

	stored, err := r.store.GetListingOptions(ctx, l.ID)
	if err != nil {
		return fmt.Errorf("loading options for %s: %w", l.ID, err)
	}
	scored := match.Score(match.MergeKnown(res, r.catalog, pdfNames(stored)), r.catalog, r.weights)

	if err := r.store.ReplaceListingOptions(ctx, l.ID, domain.ProvenanceScrape, toMatchedOptions(l.ID, res)); err != nil {
		return fmt.Errorf("rebuilding options for %s: %w", l.ID, err)
	}

	if scored.Score != l.MatchScore {
		report.ScoreChanged++
	}
	if scored.IsQualified != l.IsQualified {
		report.QualificationChanged++
	}

	if err := r.store.UpdateScore(ctx, l.ID, scored.Score, scored.IsQualified); err != nil {
		return fmt.Errorf("updating score for %s: %w", l.ID, err)
	}

	return nil
}

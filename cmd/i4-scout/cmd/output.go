package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	domain "github.com/aaearon/i4-scout/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printListingsTable(listings []domain.Listing) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tSOURCE\tTITLE\tPRICE\tKM\tYEAR\tSCORE\tQUAL\tSTATUS\n")
	for i := range listings {
		l := &listings[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\t%.1f\t%v\t%s\n",
			l.ID,
			l.Source,
			truncate(l.Title, 40),
			intField(l.Price),
			intField(l.MileageKM),
			intField(l.Year),
			l.MatchScore,
			l.IsQualified,
			l.Status,
		)
	}
	return tw.finish()
}

func printListingDetail(l *domain.Listing, history []domain.PriceHistoryEntry) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%s\n", l.ID)
	tw.writef("Source:\t%s\n", l.Source)
	if l.ExternalID != "" {
		tw.writef("External ID:\t%s\n", l.ExternalID)
	}
	tw.writef("URL:\t%s\n", l.URL)
	tw.writef("Title:\t%s\n", l.Title)
	tw.writef("Price:\t%s\n", intField(l.Price))
	tw.writef("Mileage:\t%s\n", intField(l.MileageKM))
	tw.writef("Year:\t%s\n", intField(l.Year))
	tw.writef("Score:\t%.1f\n", l.MatchScore)
	tw.writef("Qualified:\t%v\n", l.IsQualified)
	tw.writef("Status:\t%s\n", l.Status)
	tw.writef("Misses:\t%d\n", l.ConsecutiveMisses)
	tw.writef("First seen:\t%s\n", l.FirstSeenAt.Format(time.RFC3339))
	tw.writef("Last seen:\t%s\n", l.LastSeenAt.Format(time.RFC3339))

	if len(l.MatchedOptions) > 0 {
		tw.writef("\nOPTION\tVIA\tPROVENANCE\n")
		for _, o := range l.MatchedOptions {
			tw.writef("%s\t%s\t%s\n", o.Name, o.MatchedVia, o.Provenance)
		}
	}

	if len(history) > 0 {
		tw.writef("\nPRICE\tRECORDED\n")
		for _, h := range history {
			tw.writef("%d\t%s\n", h.Price, h.RecordedAt.Format(time.RFC3339))
		}
	}

	return tw.finish()
}

func printPassSummaries(summaries []domain.PassSummary) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("SOURCE\tFOUND\tNEW\tUPDATED\tUNCHANGED\tFAILED\tDELISTED\n")
	for _, s := range summaries {
		tw.writef("%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			s.Source, s.Found, s.New, s.Updated, s.SkippedUnchanged, s.Failed, s.Delisted)
	}
	return tw.finish()
}

func printPassesTable(passes []domain.ScrapePass) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tSOURCE\tSTARTED\tSTATUS\tFOUND\tNEW\tUPDATED\tUNCHANGED\tFAILED\tDELISTED\n")
	for _, p := range passes {
		tw.writef("%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			p.ID, p.Source, p.StartedAt.Format(time.RFC3339), p.Status,
			p.Found, p.New, p.Updated, p.SkippedUnchanged, p.Failed, p.Delisted)
	}
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func intField(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// Package stats computes display statistics over one page of search results.
package stats

import (
	"fmt"
	"time"

	"booksearch/internal/book"
)

// Summary holds the statistics for a single page. Nil fields are unset.
type Summary struct {
	MostCommonAuthor  *string  `json:"mostCommonAuthor,omitempty"`
	EarliestDate      *string  `json:"earliestDate,omitempty"`
	LatestDate        *string  `json:"latestDate,omitempty"`
	ResponseLatencyMs *float64 `json:"responseLatencyMs,omitempty"`
}

// dateLayouts are the publishedDate shapes the catalog emits.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339,
}

// Summarize computes the summary for page. latency is the round trip measured
// by the caller and is carried through unchanged when non-nil.
//
// The most common author is the first author whose running count strictly
// exceeds the best count seen so far in a single left-to-right scan of every
// record's authors. Ties are never re-resolved. Dates that are missing or do
// not parse are skipped; earliest and latest keep the original strings.
func Summarize(page book.Page, latency *time.Duration) Summary {
	var s Summary
	if latency != nil {
		ms := float64(*latency) / float64(time.Millisecond)
		s.ResponseLatencyMs = &ms
	}

	counts := make(map[string]int)
	var (
		bestAuthor string
		bestCount  int

		earliest, latest       time.Time
		earliestRaw, latestRaw string
		seenDate               bool
	)

	for _, rec := range page.Items {
		for _, author := range rec.Authors {
			counts[author]++
			if c := counts[author]; c > bestCount {
				bestAuthor, bestCount = author, c
			}
		}

		d, ok := parseDate(rec.PublishedDate)
		if !ok {
			continue
		}
		if !seenDate || d.Before(earliest) {
			earliest, earliestRaw = d, rec.PublishedDate
		}
		if !seenDate || d.After(latest) {
			latest, latestRaw = d, rec.PublishedDate
		}
		seenDate = true
	}

	if bestCount > 0 {
		s.MostCommonAuthor = &bestAuthor
	}
	if seenDate {
		s.EarliestDate = &earliestRaw
		s.LatestDate = &latestRaw
	}
	return s
}

func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatLatency renders a latency the way the results view shows it.
func FormatLatency(ms float64) string {
	return fmt.Sprintf("%.2f ms", ms)
}

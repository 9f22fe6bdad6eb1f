// Package ingest implements the platform ingestion collaborators. Each
// ingester pulls raw engagement data from a Graph-style API, normalizes
// it, and upserts pages, posts, and absolute-value daily metric rows
// into the store. Ingesters write complete counters and non-empty
// download dates for every row they touch; delta columns are left to the
// delta calculator, which runs after ingestion.
package ingest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ElizabethRoman12/Datax/internal/graph"
	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// yearStart returns January 1 of the current year, the default lower
// bound for post discovery.
func yearStart() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

// parseInsightDays flattens a per-day insights response into
// date → field → value, translating API metric names through mapping.
// Metrics absent from mapping are ignored; every date seen gets a full
// set of mapped fields, defaulting to zero.
func parseInsightDays(resp graph.InsightsResponse, mapping map[string]string) (map[string]map[string]int64, error) {
	out := make(map[string]map[string]int64)
	for _, ins := range resp.Data {
		field, ok := mapping[ins.Name]
		if !ok {
			continue
		}
		for _, v := range ins.Values {
			t, err := graph.ParseTime(v.EndTime)
			if err != nil {
				return nil, err
			}
			date := t.UTC().Format(types.DateFormat)
			if _, ok := out[date]; !ok {
				day := make(map[string]int64, len(mapping))
				for _, f := range mapping {
					day[f] = 0
				}
				out[date] = day
			}
			out[date][field] = v.Int()
		}
	}
	return out, nil
}

// sortedDates returns the keys of a per-day map in chronological order.
func sortedDates(days map[string]map[string]int64) []string {
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	// Dates are ISO-formatted, so string order is chronological.
	sort.Strings(dates)
	return dates
}

// weekCutoffs reduces a set of days to the latest day of each ISO week,
// in chronological order. Platforms that report daily account stats get
// one weekly snapshot per week, cut at the last reported day.
func weekCutoffs(days []time.Time) []time.Time {
	type isoWeek struct{ year, week int }
	latest := make(map[isoWeek]time.Time)
	for _, d := range days {
		y, w := d.ISOWeek()
		k := isoWeek{y, w}
		if cur, ok := latest[k]; !ok || d.After(cur) {
			latest[k] = d
		}
	}

	out := make([]time.Time, 0, len(latest))
	for _, d := range latest {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// flexString is a JSON field that arrives as a string or a number
// depending on the endpoint version; it always decodes to its string
// form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}

func (f flexString) String() string { return string(f) }

// parseFlexibleTime parses timestamps that arrive either as epoch
// seconds or as an ISO 8601 string, with or without a zone.
func parseFlexibleTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC(), nil
	}
	if t, err := graph.ParseTime(s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

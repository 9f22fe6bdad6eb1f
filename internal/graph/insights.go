package graph

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// InsightsResponse is the body of an /insights call: one Insight per
// requested metric.
type InsightsResponse struct {
	Data []Insight `json:"data"`
}

// Insight is one metric series, with one value per period.
type Insight struct {
	Name   string         `json:"name"`
	Period string         `json:"period"`
	Values []InsightValue `json:"values"`
}

// InsightValue is a single reading. Value is either a bare number or,
// for segmentation metrics, an object of segment → count.
type InsightValue struct {
	Value   json.RawMessage `json:"value"`
	EndTime string          `json:"end_time"`
}

// Int returns the value as an integer count. Missing, null, or
// non-numeric values come back as zero: the API omits metrics that do
// not apply to a given object.
func (v InsightValue) Int() int64 {
	var n json.Number
	if err := json.Unmarshal(v.Value, &n); err != nil {
		return 0
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return i
}

// Map returns the value as a segment → count object, or nil when the
// value is not an object.
func (v InsightValue) Map() map[string]int64 {
	var m map[string]int64
	if err := json.Unmarshal(v.Value, &m); err != nil {
		return nil
	}
	return m
}

// ParseTime parses the timestamp formats the Graph API emits: RFC 3339
// with either a "Z", a "+00:00" style offset, or the compact "+0000".
func ParseTime(s string) (time.Time, error) {
	norm := strings.Replace(s, "Z", "+00:00", 1)
	if len(norm) >= 5 {
		tail := norm[len(norm)-5:]
		if (tail[0] == '+' || tail[0] == '-') && !strings.Contains(tail, ":") {
			norm = norm[:len(norm)-2] + ":" + norm[len(norm)-2:]
		}
	}
	t, err := time.Parse(time.RFC3339, norm)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing graph timestamp %q: %w", s, err)
	}
	return t, nil
}

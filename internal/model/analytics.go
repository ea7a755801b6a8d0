package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Period is an inclusive date range rendered as YYYY-MM-DD_to_YYYY-MM-DD.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) String() string {
	return FormatDate(p.From) + "_to_" + FormatDate(p.To)
}

// ParsePeriod parses the YYYY-MM-DD_to_YYYY-MM-DD form.
func ParsePeriod(s string) (Period, error) {
	parts := strings.Split(s, "_to_")
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("period %q: expected YYYY-MM-DD_to_YYYY-MM-DD", s)
	}
	from, err := time.Parse(DateLayout, parts[0])
	if err != nil {
		return Period{}, fmt.Errorf("period %q: %w", s, err)
	}
	to, err := time.Parse(DateLayout, parts[1])
	if err != nil {
		return Period{}, fmt.Errorf("period %q: %w", s, err)
	}
	if to.Before(from) {
		return Period{}, fmt.Errorf("period %q: end before start", s)
	}
	return Period{From: from, To: to}, nil
}

// GroupBy selects the bucketing of peak-time analytics.
type GroupBy string

const (
	GroupByHour      GroupBy = "hour"
	GroupByDayOfWeek GroupBy = "dayOfWeek"
)

// Valid reports whether g is supported by the backend.
func (g GroupBy) Valid() bool { return g == GroupByHour || g == GroupByDayOfWeek }

// AnalyticsPayload is an analytics response.  Chart shapes belong to the
// presentation layer, so the body is passed through untouched.
type AnalyticsPayload = json.RawMessage

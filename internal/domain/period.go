package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is a trailing lookback window expressed the way market data APIs name it ("5d", "6mo", "1y").
type Period struct {
	raw    string
	years  int
	months int
	days   int
}

// ParsePeriod parses "<n>d", "<n>wk", "<n>mo" or "<n>y".
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	units := []struct {
		suffix string
		apply  func(p *Period, n int)
	}{
		{"mo", func(p *Period, n int) { p.months = n }},
		{"wk", func(p *Period, n int) { p.days = 7 * n }},
		{"d", func(p *Period, n int) { p.days = n }},
		{"y", func(p *Period, n int) { p.years = n }},
	}
	for _, u := range units {
		if !strings.HasSuffix(s, u.suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(s, u.suffix))
		if err != nil || n <= 0 {
			return Period{}, fmt.Errorf("invalid period %q", s)
		}
		p := Period{raw: s}
		u.apply(&p, n)
		return p, nil
	}
	return Period{}, fmt.Errorf("invalid period %q: want <n>d, <n>wk, <n>mo or <n>y", s)
}

// MustParsePeriod is like ParsePeriod but panics on error.
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err.Error())
	}
	return p
}

// String returns the period in its provider notation.
func (p Period) String() string { return p.raw }

// Start returns the first calendar date of the window ending on end. Month
// and year steps clamp to the last day of the target month, so 6mo before
// Aug 31 is Feb 28 rather than Mar 3.
func (p Period) Start(end time.Time) time.Time {
	end = Day(end)
	first := time.Date(end.Year()-p.years, end.Month()-time.Month(p.months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	return first.AddDate(0, 0, min(end.Day(), lastDay)-1-p.days)
}

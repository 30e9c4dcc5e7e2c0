package domain

import (
	"testing"
	"time"
)

func TestParsePeriodStart(t *testing.T) {
	end := time.Date(2024, 7, 15, 13, 30, 0, 0, time.UTC)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"6mo", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"5d", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)},
		{"2wk", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"1y", time.Date(2023, 7, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, err := ParsePeriod(tt.in)
			if err != nil {
				t.Fatalf("ParsePeriod(%q) error: %v", tt.in, err)
			}
			if got := p.Start(end); !got.Equal(tt.want) {
				t.Errorf("Start() = %s, want %s", got, tt.want)
			}
			if p.String() != tt.in {
				t.Errorf("String() = %q, want %q", p.String(), tt.in)
			}
		})
	}
}

func TestPeriodStartClampsMonthEnd(t *testing.T) {
	tests := []struct {
		period string
		end    time.Time
		want   time.Time
	}{
		{"6mo", time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"1mo", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"1y", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"3mo", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2023, 10, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.period+" "+tt.end.Format(DateFormat), func(t *testing.T) {
			if got := MustParsePeriod(tt.period).Start(tt.end); !got.Equal(tt.want) {
				t.Errorf("Start() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParsePeriodInvalid(t *testing.T) {
	for _, in := range []string{"", "mo", "0d", "-1y", "six months", "3h"} {
		if _, err := ParsePeriod(in); err == nil {
			t.Errorf("ParsePeriod(%q) expected error", in)
		}
	}
}

func TestDay(t *testing.T) {
	in := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	if got := Day(in); !got.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Day() = %s", got)
	}
}

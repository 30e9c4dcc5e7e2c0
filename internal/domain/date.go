package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-date layout used in inputs and outputs.
const DateFormat = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PricePoint is a closing price on a calendar date.
type PricePoint struct {
	Date  time.Time       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// ValuePoint is the total portfolio value on a calendar date, in JPY.
type ValuePoint struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
}

package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// cleanNumber strips whitespace and thousands separators from a numeric cell.
func cleanNumber(value string) string {
	return strings.ReplaceAll(strings.TrimSpace(value), ",", "")
}

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	d, err := ParseAmount(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseAmount parses a numeric cell strictly. Thousands separators are accepted.
func ParseAmount(value string) (decimal.Decimal, error) {
	v := cleanNumber(value)
	if v == "" {
		return decimal.Zero, fmt.Errorf("empty number")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", value, err)
	}
	return d, nil
}

// Ptr returns a pointer to a copy of d.
func Ptr(d decimal.Decimal) *decimal.Decimal { return &d }

// Percent returns num/den*100, or nil when den is zero.
func Percent(num, den decimal.Decimal) *decimal.Decimal {
	if den.IsZero() {
		return nil
	}
	return Ptr(num.Mul(hundred).Div(den))
}

// PercentOf is Percent for an optional numerator and denominator.
func PercentOf(num, den *decimal.Decimal) *decimal.Decimal {
	if num == nil || den == nil {
		return nil
	}
	return Percent(*num, *den)
}

// MulPtr multiplies an optional value by m, keeping nil.
func MulPtr(v *decimal.Decimal, m decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	return Ptr(v.Mul(m))
}

// SubPtr returns a-b for an optional a, keeping nil.
func SubPtr(a *decimal.Decimal, b decimal.Decimal) *decimal.Decimal {
	if a == nil {
		return nil
	}
	return Ptr(a.Sub(b))
}

// SumPtrs adds the non-nil values. It returns nil when every value is nil.
func SumPtrs(values []*decimal.Decimal) *decimal.Decimal {
	present := lo.Compact(values)
	if len(present) == 0 {
		return nil
	}
	return Ptr(lo.Reduce(present, func(acc decimal.Decimal, v *decimal.Decimal, _ int) decimal.Decimal {
		return acc.Add(*v)
	}, decimal.Zero))
}

// MeanPtrs is the arithmetic mean of the non-nil values, or nil when none are present.
func MeanPtrs(values []*decimal.Decimal) *decimal.Decimal {
	sum := SumPtrs(values)
	if sum == nil {
		return nil
	}
	return Ptr(sum.Div(decimal.NewFromInt(int64(len(lo.Compact(values))))))
}

// Sum adds decimals.
func Sum(values []decimal.Decimal) decimal.Decimal {
	return lo.Reduce(values, func(acc, v decimal.Decimal, _ int) decimal.Decimal {
		return acc.Add(v)
	}, decimal.Zero)
}

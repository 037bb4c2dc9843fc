// Package pricing computes rental prices. Everything here is pure: identical
// inputs always give identical breakdowns.
package pricing

import (
	"fmt"
	"math"
	"time"

	"cloud.google.com/go/civil"

	"rentacar-backend/internal/domain"
)

// TaxRatePercent is the fixed value-added tax applied on top of tax-exclusive rates
const TaxRatePercent = 19

type DiscountKind string

const (
	DiscountNone    DiscountKind = "none"
	DiscountPercent DiscountKind = "percent"
	DiscountAmount  DiscountKind = "amount"
)

// Discount is either nothing, a percentage of the gross total, or an absolute
// amount. The zero value is NoDiscount.
type Discount struct {
	kind    DiscountKind
	percent float64
	amount  int64
}

func NoDiscount() Discount { return Discount{kind: DiscountNone} }

func Percent(p float64) Discount { return Discount{kind: DiscountPercent, percent: p} }

func Amount(a int64) Discount { return Discount{kind: DiscountAmount, amount: a} }

// DiscountFrom rebuilds a discount from its persisted kind and value
func DiscountFrom(kind string, value float64) (Discount, error) {
	switch DiscountKind(kind) {
	case "", DiscountNone:
		return NoDiscount(), nil
	case DiscountPercent:
		return Percent(value), nil
	case DiscountAmount:
		return Amount(int64(math.Round(value))), nil
	}
	return Discount{}, fmt.Errorf("%w: unknown discount kind %q", domain.ErrValidation, kind)
}

func (d Discount) Kind() DiscountKind {
	if d.kind == "" {
		return DiscountNone
	}
	return d.kind
}

// Value is the percentage or the amount, depending on Kind
func (d Discount) Value() float64 {
	switch d.Kind() {
	case DiscountPercent:
		return d.percent
	case DiscountAmount:
		return float64(d.amount)
	}
	return 0
}

// WithPercent replaces any previous discount, including an absolute amount
func (d Discount) WithPercent(p float64) Discount { return Percent(p) }

// WithAmount replaces any previous discount, including a percentage
func (d Discount) WithAmount(a int64) Discount { return Amount(a) }

func (d Discount) Validate() error {
	switch d.Kind() {
	case DiscountPercent:
		if d.percent < 0 || d.percent > 100 || math.IsNaN(d.percent) {
			return fmt.Errorf("%w: discount percent must be between 0 and 100", domain.ErrValidation)
		}
	case DiscountAmount:
		if d.amount < 0 {
			return fmt.Errorf("%w: discount amount must not be negative", domain.ErrValidation)
		}
	}
	return nil
}

// apply returns the discount in currency units for a gross total
func (d Discount) apply(gross int64) int64 {
	switch d.Kind() {
	case DiscountPercent:
		return int64(math.Round(float64(gross) * d.percent / 100))
	case DiscountAmount:
		return d.amount
	}
	return 0
}

// Breakdown is the full price of a rental, in whole currency units
type Breakdown struct {
	Days       int32        `json:"days"`
	DailyRate  int64        `json:"daily_rate"`
	Subtotal   int64        `json:"subtotal"`
	Tax        int64        `json:"tax"`
	GrossTotal int64        `json:"gross_total"`
	Kind       DiscountKind `json:"discount_kind"`
	Value      float64      `json:"discount_value"`
	Discount   int64        `json:"discount"`
	NetTotal   int64        `json:"net_total"`
}

// BillableDays counts calendar days from start up to, not including, end.
// The return day is never charged.
func BillableDays(start, end civil.Date) (int, error) {
	if !start.IsValid() || !end.IsValid() {
		return 0, fmt.Errorf("%w: invalid date", domain.ErrValidation)
	}
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date %s is before start date %s", domain.ErrValidation, end, start)
	}
	return end.DaysSince(start), nil
}

// Tax rounds half up to the nearest whole currency unit
func Tax(subtotal int64) int64 {
	return (subtotal*TaxRatePercent + 50) / 100
}

// Compute prices a rental of dailyRate (tax-exclusive) from start to end
func Compute(dailyRate int64, start, end civil.Date, discount Discount) (Breakdown, error) {
	if dailyRate < 0 {
		return Breakdown{}, fmt.Errorf("%w: daily rate must not be negative", domain.ErrValidation)
	}
	if err := discount.Validate(); err != nil {
		return Breakdown{}, err
	}
	days, err := BillableDays(start, end)
	if err != nil {
		return Breakdown{}, err
	}

	subtotal := dailyRate * int64(days)
	tax := Tax(subtotal)
	gross := subtotal + tax
	off := discount.apply(gross)
	net := gross - off
	if net < 0 {
		net = 0
	}

	return Breakdown{
		Days:       int32(days),
		DailyRate:  dailyRate,
		Subtotal:   subtotal,
		Tax:        tax,
		GrossTotal: gross,
		Kind:       discount.Kind(),
		Value:      discount.Value(),
		Discount:   off,
		NetTotal:   net,
	}, nil
}

// ComputeForRange prices timestamps by their civil dates in loc
func ComputeForRange(dailyRate int64, startAt, endAt time.Time, loc *time.Location, discount Discount) (Breakdown, error) {
	return Compute(dailyRate, civil.DateOf(startAt.In(loc)), civil.DateOf(endAt.In(loc)), discount)
}

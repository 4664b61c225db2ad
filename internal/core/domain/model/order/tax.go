package order

import (
	"errors"

	"tableorder/internal/core/domain/model/kernel"
	"tableorder/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

const (
	// DefaultDecimalPlaces is the currency precision used when none is configured.
	DefaultDecimalPlaces int32 = 2
	maxDecimalPlaces     int32 = 8
)

// DefaultTaxRate is the flat rate applied when none is configured.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// Totals holds the derived amounts of an order.
type Totals struct {
	Subtotal kernel.Money
	Tax      kernel.Money
	Total    kernel.Money
}

// TaxPolicy computes order totals with a flat tax rate and half-up rounding.
type TaxPolicy struct {
	rate   decimal.Decimal
	places int32
}

// NewTaxPolicy validates that the rate is within [0, 1] and places within [0, 8].
func NewTaxPolicy(rate decimal.Decimal, places int32) (TaxPolicy, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return TaxPolicy{}, errs.NewValueIsOutOfRangeError("tax rate", rate.String(), 0, 1)
	}
	if places < 0 || places > maxDecimalPlaces {
		return TaxPolicy{}, errs.NewValueIsOutOfRangeErrorWithCause(
			"decimal places", places, 0, maxDecimalPlaces,
			errors.New("unsupported currency precision"),
		)
	}
	return TaxPolicy{rate: rate, places: places}, nil
}

// DefaultTaxPolicy is 8% rounded to cents.
func DefaultTaxPolicy() TaxPolicy {
	return TaxPolicy{rate: DefaultTaxRate, places: DefaultDecimalPlaces}
}

func (p TaxPolicy) Rate() decimal.Decimal {
	return p.rate
}

func (p TaxPolicy) DecimalPlaces() int32 {
	return p.places
}

// Apply derives subtotal, tax and total from the order lines.
// Each derived value is rounded on its own:
//
//	subtotal = round(sum(unitPrice * quantity))
//	tax      = round(subtotal * rate)
//	total    = round(subtotal + tax)
func (p TaxPolicy) Apply(items []Item) Totals {
	subtotal := kernel.ZeroMoney()
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	subtotal = subtotal.Round(p.places)

	tax := subtotal.MulRate(p.rate).Round(p.places)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax).Round(p.places),
	}
}

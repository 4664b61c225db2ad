package kernel

import (
	"encoding/json"
	"fmt"

	"tableorder/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// minDisplayPlaces is the number of fraction digits always printed for amounts.
const minDisplayPlaces = 2

// Money is a non-negative currency amount backed by an exact decimal.
// Arithmetic never rounds implicitly; callers round derived values with Round.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney returns an amount of 0.
func ZeroMoney() Money {
	return Money{amount: decimal.Zero}
}

// NewMoney validates that amount is not negative.
func NewMoney(amount decimal.Decimal) (Money, error) {
	if amount.IsNegative() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"amount",
			fmt.Errorf("%s is negative", amount.String()),
		)
	}
	return Money{amount: amount}, nil
}

// MoneyFromString parses a decimal literal such as "10.00".
func MoneyFromString(s string) (Money, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(amount)
}

// Decimal exposes the exact amount for persistence adapters.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Times multiplies the amount by a quantity.
func (m Money) Times(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

// MulRate multiplies the amount by a rate such as a tax rate.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(rate)}
}

// Round rounds half-up to the given number of decimal places.
// Amounts are never negative, so decimal's half-away-from-zero rounding is half-up here.
func (m Money) Round(places int32) Money {
	return Money{amount: m.amount.Round(places)}
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// String prints at least two fraction digits, more when the amount carries them.
func (m Money) String() string {
	places := int32(minDisplayPlaces)
	if exp := -m.amount.Exponent(); exp > places {
		places = exp
	}
	return m.amount.StringFixed(places)
}

// MarshalJSON encodes the amount as a string to avoid float rounding in clients.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n json.Number
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return errs.NewValueIsInvalidErrorWithCause("amount", err)
		}
		s = n.String()
	}

	parsed, err := MoneyFromString(s)
	if err != nil {
		return err
	}

	*m = parsed
	return nil
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultCurrency is the currency assumed when the catalog does not tag one.
const DefaultCurrency = "TRY"

// Money is a fixed-point monetary amount: an integer count of minor units
// (kuruş, cents) plus a currency tag. All arithmetic stays in integers;
// binary floats never appear. Decimal text such as "60.00" exists only at
// the serialization boundary via ParseDecimal and DecimalString.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney creates a Money value from minor units and a currency code.
func NewMoney(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

// Add returns the sum of two amounts. A zero-valued operand with no currency
// adopts the other operand's currency, so summing a slice can start from
// Money{}. Operands must otherwise share a currency; the catalog entry is
// validated to carry exactly one currency before any arithmetic happens.
func (m Money) Add(o Money) Money {
	cur := m.Currency
	if cur == "" {
		cur = o.Currency
	}
	return Money{Amount: m.Amount + o.Amount, Currency: cur}
}

// MulUnits returns the amount multiplied by a unit count.
func (m Money) MulUnits(n int64) Money {
	return Money{Amount: m.Amount * n, Currency: m.Currency}
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsNegative returns true if the amount is below zero. A valid price
// computation never produces a negative Money.
func (m Money) IsNegative() bool {
	return m.Amount < 0
}

// Equal reports whether two amounts are the same value in the same currency.
func (m Money) Equal(o Money) bool {
	return m.Amount == o.Amount && m.Currency == o.Currency
}

// DecimalString renders the amount as decimal text with two fraction digits,
// e.g. 6000 → "60.00". Used only at the wire boundary.
func (m Money) DecimalString() string {
	sign := ""
	amount := m.Amount
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

// String renders the amount with its currency tag, e.g. "60.00 TRY".
func (m Money) String() string {
	if m.Currency == "" {
		return m.DecimalString()
	}
	return m.DecimalString() + " " + m.Currency
}

// ParseDecimal parses decimal wire text ("60", "60.5", "60.00") into a Money
// in the given currency. At most two fraction digits are accepted.
func ParseDecimal(s, currency string) (Money, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Money{}, fmt.Errorf("parse money: empty string")
	}

	negative := false
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}

	whole, frac, hasFrac := strings.Cut(text, ".")
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}

	var cents int64
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return Money{}, fmt.Errorf("parse money %q: fraction must have 1 or 2 digits", s)
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return Money{}, fmt.Errorf("parse money %q: %w", s, err)
		}
		if len(frac) == 1 {
			cents *= 10
		}
	}

	amount := units*100 + cents
	if negative {
		amount = -amount
	}

	return Money{Amount: amount, Currency: currency}, nil
}

package models

import (
	"github.com/shopspring/decimal"
)

var half = decimal.New(5, -1)

// Fixed2 is a decimal quantized to two fractional digits. It marshals as a JSON number such as 32.00.
type Fixed2 struct {
	decimal.Decimal
}

// Quantize rounds to two fractional digits, ties toward positive infinity (0.125 -> 0.13).
func Quantize(d decimal.Decimal) Fixed2 {
	return Fixed2{Decimal: d.Shift(2).Add(half).Floor().Shift(-2)}
}

// QuantizePtr is Quantize for values that may be undefined.
func QuantizePtr(d decimal.Decimal, ok bool) *Fixed2 {
	if !ok {
		return nil
	}
	q := Quantize(d)
	return &q
}

// String renders the value with exactly two fractional digits.
func (f Fixed2) String() string {
	return f.StringFixed(2)
}

// MarshalJSON implements json.Marshaler.
func (f Fixed2) MarshalJSON() ([]byte, error) {
	return []byte(f.StringFixed(2)), nil
}

// UnmarshalJSON accepts both quoted and bare numbers.
func (f *Fixed2) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	f.Decimal = d
	return nil
}

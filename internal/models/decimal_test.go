package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeRoundsHalfUp(t *testing.T) {
	third := decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
	cases := []struct {
		in   decimal.Decimal
		want string
	}{
		{third, "0.33"},
		{decimal.RequireFromString("0.125"), "0.13"},
		{decimal.RequireFromString("0.135"), "0.14"},
		{decimal.RequireFromString("0.005"), "0.01"},
		{decimal.RequireFromString("0.004"), "0.00"},
		{decimal.RequireFromString("0.0049999"), "0.00"},
		{decimal.RequireFromString("2.675"), "2.68"},
		{decimal.RequireFromString("99.995"), "100.00"},
		{decimal.RequireFromString("100"), "100.00"},
		{decimal.Zero, "0.00"},
		{decimal.NewFromInt(2).Div(decimal.NewFromInt(3)), "0.67"},
	}
	for _, tc := range cases {
		t.Run(tc.in.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, Quantize(tc.in).String())
		})
	}
}

func TestQuantizePtrUndefined(t *testing.T) {
	assert.Nil(t, QuantizePtr(decimal.NewFromInt(5), false))
	got := QuantizePtr(decimal.NewFromInt(5), true)
	require.NotNil(t, got)
	assert.Equal(t, "5.00", got.String())
}

func TestFixed2JSON(t *testing.T) {
	payload := struct {
		Grade Fixed2  `json:"grade"`
		LO    *Fixed2 `json:"lo"`
	}{Grade: Quantize(decimal.NewFromInt(32))}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"grade":32.00,"lo":null}`, string(raw))
	assert.Contains(t, string(raw), `"grade":32.00`)

	var back struct {
		Grade Fixed2 `json:"grade"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"grade":"68.5"}`), &back))
	assert.Equal(t, "68.50", back.Grade.String())
}

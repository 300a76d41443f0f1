package shipping

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{Quantity: 2, Price: decimal.NewFromInt(100)},
		{Quantity: 1, Price: decimal.RequireFromString("49.90")},
	}
	assert.True(t, Subtotal(lines).Equal(decimal.RequireFromString("249.90")))

	assert.True(t, Subtotal(nil).Equal(decimal.Zero))
}

func TestSubtotalNoFloatDrift(t *testing.T) {
	// 1000 x 0.10 must be exactly 100, not 99.9999...
	lines := make([]Line, 1000)
	for i := range lines {
		lines[i] = Line{Quantity: 1, Price: decimal.RequireFromString("0.10")}
	}
	require.True(t, Subtotal(lines).Equal(decimal.NewFromInt(100)))
}

func TestQuote(t *testing.T) {
	policy := Policy{
		FreeThreshold: decimal.NewFromInt(500000),
		FlatFee:       decimal.NewFromInt(30000),
	}

	t.Run("below threshold pays flat fee", func(t *testing.T) {
		info := policy.Quote(decimal.NewFromInt(200000))
		assert.True(t, info.ShippingFee.Equal(decimal.NewFromInt(30000)))
		assert.True(t, info.Total.Equal(decimal.NewFromInt(230000)))
	})

	t.Run("at threshold ships free", func(t *testing.T) {
		info := policy.Quote(decimal.NewFromInt(500000))
		assert.True(t, info.ShippingFee.Equal(decimal.Zero))
		assert.True(t, info.Total.Equal(decimal.NewFromInt(500000)))
	})

	t.Run("above threshold ships free", func(t *testing.T) {
		info := policy.Quote(decimal.NewFromInt(500001))
		assert.True(t, info.ShippingFee.Equal(decimal.Zero))
		assert.True(t, info.Total.Equal(decimal.NewFromInt(500001)))
	})
}

func TestQuoteDeterministic(t *testing.T) {
	policy := DefaultPolicy()
	subtotal := decimal.RequireFromString("123456.78")
	first := policy.Quote(subtotal)
	second := policy.Quote(subtotal)
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.ShippingFee.Equal(second.ShippingFee))
}

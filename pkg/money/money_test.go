package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestLineSubtotal(t *testing.T) {
	assert.True(t, LineSubtotal(dec(t, "10.00"), 3).Equal(dec(t, "30.00")))
	assert.True(t, LineSubtotal(dec(t, "2.50"), 0).IsZero())
	assert.True(t, LineSubtotal(dec(t, "2.50"), -4).IsZero(), "negative quantity must clamp to zero")
}

func TestComputeLocalTotal(t *testing.T) {
	totals := Compute(dec(t, "20.00"), dec(t, "0.10"), nil)

	assert.True(t, totals.Subtotal.Equal(dec(t, "20.00")))
	assert.True(t, totals.Tax.Equal(dec(t, "2.00")))
	assert.True(t, totals.Total.Equal(dec(t, "22.00")))
	assert.False(t, totals.ServerTotal, "total should be locally computed")
}

func TestComputeServerTotalWins(t *testing.T) {
	server := dec(t, "21.37")
	totals := Compute(dec(t, "20.00"), dec(t, "0.10"), &server)

	assert.True(t, totals.Total.Equal(server), "server total must win")
	assert.True(t, totals.ServerTotal)
	// Display fields stay locally derived.
	assert.True(t, totals.Tax.Equal(dec(t, "2.00")))
}

func TestComputeZeroSubtotal(t *testing.T) {
	totals := Compute(decimal.Zero, dec(t, "0.10"), nil)

	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "22.00", Format(dec(t, "22")))
	assert.Equal(t, "3.01", Format(dec(t, "3.005")))
}

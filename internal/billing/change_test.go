package billing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kasir-api/internal/billing"
	"github.com/noah-isme/kasir-api/internal/domain"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestMakeChangeGreedy(t *testing.T) {
	denoms := []domain.Denomination{
		{FaceValue: 500, AvailableCount: 1000},
		{FaceValue: 100, AvailableCount: 1000},
		{FaceValue: 50, AvailableCount: 1000},
	}
	change, remaining := billing.MakeChange(dec(t, "350"), denoms)
	require.Equal(t, billing.Change{100: 3, 50: 1}, change)
	require.True(t, remaining.IsZero(), "remaining = %s", remaining)
}

func TestMakeChangeBoundedSupplyShortfall(t *testing.T) {
	denoms := []domain.Denomination{
		{FaceValue: 500, AvailableCount: 2},
		{FaceValue: 100, AvailableCount: 0},
	}
	change, remaining := billing.MakeChange(dec(t, "600"), denoms)
	require.Equal(t, billing.Change{500: 1}, change)
	require.True(t, dec(t, "100").Equal(remaining), "remaining = %s", remaining)
}

func TestMakeChangeTruncatesFraction(t *testing.T) {
	denoms := []domain.Denomination{{FaceValue: 1, AvailableCount: 100}}
	change, remaining := billing.MakeChange(dec(t, "19.99"), denoms)
	require.Equal(t, billing.Change{1: 19}, change)
	require.True(t, dec(t, "0.99").Equal(remaining), "remaining = %s", remaining)
}

func TestMakeChangeZeroBalance(t *testing.T) {
	denoms := []domain.Denomination{{FaceValue: 100, AvailableCount: 10}}
	change, remaining := billing.MakeChange(decimal.Zero, denoms)
	require.Empty(t, change)
	require.True(t, remaining.IsZero())
}

func TestMakeChangeUnsortedInput(t *testing.T) {
	denoms := []domain.Denomination{
		{FaceValue: 50, AvailableCount: 10},
		{FaceValue: 500, AvailableCount: 10},
		{FaceValue: 100, AvailableCount: 10},
	}
	change, remaining := billing.MakeChange(dec(t, "650"), denoms)
	require.Equal(t, billing.Change{500: 1, 100: 1, 50: 1}, change)
	require.True(t, remaining.IsZero())
}

package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierPrice(t *testing.T) {
	cases := []struct {
		minutes int
		want    int64
	}{
		{1, 300},
		{14, 300},
		{15, 300},
		{16, 500},
		{29, 500},
		{30, 500},
		{31, 750},
		{44, 750},
		{45, 750},
		{46, 1000},
		{60, 1000},
		{90, 1500},
		{120, 2000},
	}
	for _, tc := range cases {
		got := TierPrice(tc.minutes)
		assert.True(t, got.Equal(decimal.NewFromInt(tc.want)),
			"TierPrice(%d) = %s, want %d", tc.minutes, got, tc.want)
	}
}

func TestTierPriceMonotonic(t *testing.T) {
	prev := TierPrice(1)
	for m := 2; m <= 240; m++ {
		cur := TierPrice(m)
		require.False(t, cur.LessThan(prev), "TierPrice(%d) < TierPrice(%d)", m, m-1)
		prev = cur
	}
}

func TestExtensionPriceIsFreshBlock(t *testing.T) {
	// Extending by 15 minutes always costs the first-block price, no
	// matter how long the session already is.
	assert.True(t, ExtensionPrice(15).Equal(decimal.NewFromInt(300)))
	assert.True(t, ExtensionPrice(30).Equal(decimal.NewFromInt(500)))
	assert.True(t, ExtensionPrice(45).Equal(decimal.NewFromInt(750)))

	// Not TierPrice(45) - TierPrice(30).
	assert.False(t, ExtensionPrice(15).Equal(TierPrice(45).Sub(TierPrice(30))))
}

func TestApplyDiscount(t *testing.T) {
	rate := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	got := ApplyDiscount(decimal.NewFromInt(300), rate("0.10"))
	assert.Equal(t, "270.00", got.StringFixed(2))

	got = ApplyDiscount(decimal.NewFromInt(500), rate("0.25"))
	assert.Equal(t, "375.00", got.StringFixed(2))

	// Zero rate leaves the amount untouched.
	got = ApplyDiscount(decimal.NewFromInt(750), decimal.Zero)
	assert.Equal(t, "750.00", got.StringFixed(2))

	// 305 * 0.895 = 272.975 -> rounds half up to 272.98.
	got = ApplyDiscount(decimal.NewFromInt(305), rate("0.105"))
	assert.Equal(t, "272.98", got.StringFixed(2))
}

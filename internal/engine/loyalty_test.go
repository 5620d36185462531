package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/game-room-reservation/internal/model"
)

func TestPointsFor(t *testing.T) {
	cases := []struct {
		minutes int
		want    uint32
	}{
		{0, 0},
		{-30, 0},
		{14, 0},
		{15, 1},
		{29, 1},
		{30, 2},
		{45, 3},
		{59, 3},
		{60, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PointsFor(tc.minutes), "PointsFor(%d)", tc.minutes)
	}
}

func TestLedgerAccrueClient(t *testing.T) {
	mem := newMemStores()
	mem.clients[7] = &model.Client{ID: 7, FullName: "Ana"}
	ledger := NewLoyaltyLedger(nil)

	require.NoError(t, ledger.AccrueClient(context.Background(), mem.view(), 7, 45))
	assert.Equal(t, uint32(3), mem.clients[7].LoyaltyPoints)

	// Less than one block earns nothing and must not touch the store.
	require.NoError(t, ledger.AccrueClient(context.Background(), mem.view(), 7, 10))
	assert.Equal(t, uint32(3), mem.clients[7].LoyaltyPoints)
}

func TestLedgerAccrueReferrer(t *testing.T) {
	mem := newMemStores()
	mem.referrers[1] = &model.Referrer{ID: 1, FullName: "Rex", Code: "REX10"}
	ledger := NewLoyaltyLedger(nil)

	require.NoError(t, ledger.AccrueReferrer(context.Background(), mem.view(), "REX10", 30))
	assert.Equal(t, uint32(2), mem.referrers[1].ReferralPoints)
}

func TestLedgerUnknownReferralCodeIsSkipped(t *testing.T) {
	mem := newMemStores()
	ledger := NewLoyaltyLedger(nil)

	// A misspelled sponsor code must never fail the paying client's
	// operation.
	err := ledger.AccrueReferrer(context.Background(), mem.view(), "NOPE", 30)
	require.NoError(t, err)
}

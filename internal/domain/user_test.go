package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRankForSpending(t *testing.T) {
	tests := []struct {
		spending int64
		want     Rank
	}{
		{0, RankStandard},
		{999_999, RankStandard},
		{1_000_000, RankSilver},
		{4_999_999, RankSilver},
		{5_000_000, RankGold},
		{9_999_999, RankGold},
		{10_000_000, RankDiamond},
		{50_000_000, RankDiamond},
	}

	for _, tt := range tests {
		got := RankForSpending(decimal.NewFromInt(tt.spending))
		assert.Equal(t, tt.want, got, "spending %d", tt.spending)
	}
}

func TestRankMonotonicInSpending(t *testing.T) {
	order := map[Rank]int{RankStandard: 0, RankSilver: 1, RankGold: 2, RankDiamond: 3}

	prev := RankStandard
	for spending := int64(0); spending <= 12_000_000; spending += 250_000 {
		rank := RankForSpending(decimal.NewFromInt(spending))
		assert.GreaterOrEqual(t, order[rank], order[prev], "rank regressed at spending %d", spending)
		prev = rank
	}
}

func TestLoyaltyPoints(t *testing.T) {
	tests := []struct {
		amount int64
		want   int64
	}{
		{180_000, 9_000},
		{90_000, 4_500},
		{99, 4}, // 4.95 floors to 4
		{0, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LoyaltyPoints(decimal.NewFromInt(tt.amount)), "amount %d", tt.amount)
	}
}

func TestLoyaltyAccrualBase(t *testing.T) {
	booking := &Booking{
		OriginalPrice: decimal.NewFromInt(200_000),
		FinalPrice:    decimal.NewFromInt(180_000),
	}

	assert.True(t, AccrualFinal.Base(booking).Equal(decimal.NewFromInt(180_000)))
	assert.True(t, AccrualOriginal.Base(booking).Equal(decimal.NewFromInt(200_000)))
}

package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Rank string

const (
	RankStandard Rank = "Standard"
	RankSilver   Rank = "Silver"
	RankGold     Rank = "Gold"
	RankDiamond  Rank = "Diamond"
)

var (
	silverThreshold  = decimal.NewFromInt(1_000_000)
	goldThreshold    = decimal.NewFromInt(5_000_000)
	diamondThreshold = decimal.NewFromInt(10_000_000)

	pointsRate = decimal.New(5, -2) // 5% of the settled amount
)

// RankForSpending derives the loyalty rank from lifetime spending. Thresholds
// are inclusive lower bounds, so the rank is monotonic in spending and is
// never stored independently of it.
func RankForSpending(totalSpending decimal.Decimal) Rank {
	switch {
	case totalSpending.GreaterThanOrEqual(diamondThreshold):
		return RankDiamond
	case totalSpending.GreaterThanOrEqual(goldThreshold):
		return RankGold
	case totalSpending.GreaterThanOrEqual(silverThreshold):
		return RankSilver
	default:
		return RankStandard
	}
}

// LoyaltyPoints returns the points earned for a settled amount, floored.
func LoyaltyPoints(amount decimal.Decimal) int64 {
	return amount.Mul(pointsRate).Floor().IntPart()
}

// LoyaltyAccrual selects which price feeds spending and points: the
// voucher-discounted final price or the pre-discount original price.
type LoyaltyAccrual string

const (
	AccrualFinal    LoyaltyAccrual = "final"
	AccrualOriginal LoyaltyAccrual = "original"
)

func ParseLoyaltyAccrual(s string) (LoyaltyAccrual, error) {
	switch accrual := LoyaltyAccrual(s); accrual {
	case AccrualFinal, AccrualOriginal:
		return accrual, nil
	default:
		return "", fmt.Errorf("invalid loyalty accrual base: %q", s)
	}
}

func (a LoyaltyAccrual) Base(booking *Booking) decimal.Decimal {
	if a == AccrualOriginal {
		return booking.OriginalPrice
	}

	return booking.FinalPrice
}

type User struct {
	ID            int
	Email         string
	Name          string
	CurrentPoints int64
	TotalSpending decimal.Decimal
	Rank          Rank
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*User, error)
}

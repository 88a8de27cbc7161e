package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatHeld      SeatStatus = "held"
	SeatSold      SeatStatus = "sold"
	SeatLocked    SeatStatus = "locked" // operator-only, never touched by the booking flow
)

type SeatType string

const (
	SeatTypeStandard SeatType = "standard"
	SeatTypeVIP      SeatType = "vip"
	SeatTypeCouple   SeatType = "couple"
)

// PriceMultiplier returns the factor applied to a showtime's base price for
// this seat type.
func (t SeatType) PriceMultiplier() decimal.Decimal {
	switch t {
	case SeatTypeVIP:
		return decimal.NewFromFloat(1.5)
	case SeatTypeCouple:
		return decimal.NewFromInt(2)
	default:
		return decimal.NewFromInt(1)
	}
}

// Seat is one entry of a showtime's seat map. HolderID is set if and only if
// the seat is held or sold.
type Seat struct {
	Code     string
	Row      string
	Col      int
	Type     SeatType
	Price    decimal.Decimal
	Status   SeatStatus
	HolderID *uuid.UUID
}

var seatTransitions = map[SeatStatus][]SeatStatus{
	SeatAvailable: {SeatHeld},
	SeatHeld:      {SeatSold, SeatAvailable},
	SeatSold:      {},
	SeatLocked:    {},
}

// CanTransitionTo reports whether the seat state machine permits moving from
// s to target. Sold and locked are terminal; a seat never goes straight from
// available to sold.
func (s SeatStatus) CanTransitionTo(target SeatStatus) bool {
	for _, allowed := range seatTransitions[s] {
		if allowed == target {
			return true
		}
	}

	return false
}

type Showtime struct {
	ID             int
	MovieTitle     string
	CinemaName     string
	RoomName       string
	RegionID       string
	StartTime      time.Time
	EndTime        time.Time
	BasePrice      decimal.Decimal
	SeatMap        map[string]Seat
	TotalSeats     int
	AvailableSeats int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ShowtimeRepository interface {
	GetByID(ctx context.Context, id int) (*Showtime, error)
}

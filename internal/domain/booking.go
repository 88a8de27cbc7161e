package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingPaid      BookingStatus = "paid"
	BookingCancelled BookingStatus = "cancelled"
	BookingFailed    BookingStatus = "failed"
)

// Booking is one buyer's time-bounded claim on a set of seats for a single
// showtime. The seat set and ExpiresAt are immutable after creation; only
// Status, UpdatedAt, PaymentAt, PaymentMethod, ProviderTransactionID and
// QRCode change afterwards.
type Booking struct {
	ID                    uuid.UUID
	UserID                int
	ShowtimeID            int
	Seats                 []string
	Status                BookingStatus
	OriginalPrice         decimal.Decimal
	DiscountAmount        decimal.Decimal
	FinalPrice            decimal.Decimal
	VoucherCode           *string
	PaymentMethod         *string
	ProviderTransactionID *string
	QRCode                *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	ExpiresAt             time.Time
	PaymentAt             *time.Time
}

// Expired reports whether the hold deadline has passed. Expiry is a logical
// predicate on ExpiresAt, not a side effect of the sweeper having run.
func (b *Booking) Expired(now time.Time) bool {
	return !now.Before(b.ExpiresAt)
}

// SettleCheck validates that the booking can be settled by userID at the
// given instant. ErrAlreadySettled means a retried settlement hit a booking
// that is already paid; callers treat it as an idempotent no-op success.
func (b *Booking) SettleCheck(userID int, now time.Time) error {
	if b.UserID != userID {
		return ErrForbidden
	}

	switch b.Status {
	case BookingPaid:
		return ErrAlreadySettled
	case BookingCancelled:
		return ErrBookingCancelled
	case BookingFailed:
		return ErrBookingFailed
	}

	if b.Expired(now) {
		return ErrBookingExpired
	}

	return nil
}

// CancelCheck validates a user-initiated cancellation.
func (b *Booking) CancelCheck(userID int) error {
	if b.UserID != userID {
		return ErrForbidden
	}

	switch b.Status {
	case BookingPaid:
		return ErrAlreadySettled
	case BookingCancelled:
		return ErrBookingCancelled
	case BookingFailed:
		return ErrBookingFailed
	}

	return nil
}

// NewHold builds a pending booking for the requested seats of a showtime,
// validating the full seat set and pricing it, including an optional voucher.
// It does not mutate the showtime; persisting the hold and flipping the seats
// to held is the repository's transactional job.
func NewHold(
	showtime *Showtime,
	userID int,
	seatCodes []string,
	voucher *Voucher,
	ttl time.Duration,
	now time.Time) (*Booking, error) {

	if len(seatCodes) == 0 {
		return nil, errors.New("seat list must not be empty")
	}

	var missing, unavailable []string
	originalPrice := decimal.Zero

	seen := make(map[string]bool, len(seatCodes))
	seats := make([]string, 0, len(seatCodes))

	for _, code := range seatCodes {
		if seen[code] {
			continue
		}
		seen[code] = true
		seats = append(seats, code)

		seat, ok := showtime.SeatMap[code]
		if !ok {
			missing = append(missing, code)
			continue
		}

		if seat.Status != SeatAvailable {
			unavailable = append(unavailable, code)
			continue
		}

		originalPrice = originalPrice.Add(seat.Price)
	}

	if len(missing) > 0 {
		return nil, SeatNotFoundError{Seats: missing}
	}
	if len(unavailable) > 0 {
		return nil, SeatUnavailableError{Seats: unavailable}
	}

	discountAmount := decimal.Zero
	var voucherCode *string

	if voucher != nil {
		if err := voucher.Validate(now, originalPrice); err != nil {
			return nil, err
		}

		discountAmount = voucher.Discount(originalPrice)
		voucherCode = &voucher.Code
	}

	finalPrice := originalPrice.Sub(discountAmount)
	if finalPrice.IsNegative() {
		finalPrice = decimal.Zero
	}

	return &Booking{
		ID:             uuid.New(),
		UserID:         userID,
		ShowtimeID:     showtime.ID,
		Seats:          seats,
		Status:         BookingPending,
		OriginalPrice:  originalPrice,
		DiscountAmount: discountAmount,
		FinalPrice:     finalPrice,
		VoucherCode:    voucherCode,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}, nil
}

// TicketFunc produces the opaque ticket payload stored as the booking's
// QR code during settlement.
type TicketFunc func(booking *Booking, showtimeStart time.Time) (string, error)

type BookingRepository interface {
	// Create places the hold: seat validation, pricing and the seat-map flip
	// to held run in one atomic transaction with the booking insert.
	Create(ctx context.Context, userID, showtimeID int, seatCodes []string, voucherCode *string, ttl time.Duration) (*Booking, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetAllByUserID(ctx context.Context, userID int, pagination Pagination) ([]Booking, *Metadata, error)

	// AttachPaymentOrder records the provider order created for a pending
	// booking. The booking stays pending; a provider timeout leaves it for
	// the sweeper to reclaim.
	AttachPaymentOrder(ctx context.Context, id uuid.UUID, userID int, method, transactionID string) error

	// Finalize settles the booking: seats held→sold, loyalty credit, voucher
	// consumption, QR payload and status flip commit together or not at all.
	// Returns the already-settled booking with ErrAlreadySettled on retries.
	Finalize(ctx context.Context, id uuid.UUID, userID int, method, transactionID string, ticket TicketFunc) (*Booking, error)

	// Fail marks a pending booking failed after a provider failure signal and
	// releases its held seats.
	Fail(ctx context.Context, id uuid.UUID, transactionID string) (*Booking, error)

	// Cancel is the user-initiated pending→cancelled transition, releasing
	// held seats in the same transaction.
	Cancel(ctx context.Context, id uuid.UUID, userID int) (*Booking, error)

	// DueForExpiry lists pending bookings whose hold deadline has passed.
	DueForExpiry(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)

	// CancelExpired processes one expired hold in its own transaction. It
	// reports false when the booking was concurrently settled or cancelled
	// and nothing was done.
	CancelExpired(ctx context.Context, id uuid.UUID) (bool, error)
}

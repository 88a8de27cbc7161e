package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrForbidden         = errors.New("booking does not belong to the current user")
	ErrAlreadySettled    = errors.New("booking has already been paid")
	ErrBookingCancelled  = errors.New("booking has been cancelled")
	ErrBookingFailed     = errors.New("booking payment has failed")
	ErrBookingExpired    = errors.New("booking hold has expired")
	ErrSeatStateConflict = errors.New("seat is no longer held by this booking")
	ErrVoucherExhausted  = errors.New("voucher usage limit reached")
)

// SeatNotFoundError reports requested seat codes that don't exist in the
// showtime's seat map.
type SeatNotFoundError struct {
	Seats []string
}

func (e SeatNotFoundError) Error() string {
	return fmt.Sprintf("seat(s) not found: %s", strings.Join(e.Seats, ", "))
}

// SeatUnavailableError reports requested seats that are held, sold or locked.
type SeatUnavailableError struct {
	Seats []string
}

func (e SeatUnavailableError) Error() string {
	return fmt.Sprintf("seat(s) not available: %s", strings.Join(e.Seats, ", "))
}

type VoucherInvalidError struct {
	Code   string
	Reason string
}

func (e VoucherInvalidError) Error() string {
	return fmt.Sprintf("voucher %s is not applicable: %s", e.Code, e.Reason)
}

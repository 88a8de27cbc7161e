// Package api defines the request and response types of the HTTP surface.
package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	PageSize     int `json:"pageSize"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	TotalRecords int `json:"totalRecords"`
}

type CreateBookingRequest struct {
	ShowtimeId  int      `json:"showtimeId" validate:"required,gt=0"`
	Seats       []string `json:"seats" validate:"required,min=1,max=8,dive,seat_code"`
	VoucherCode *string  `json:"voucherCode,omitempty" validate:"omitempty,voucher_code"`
}

type BookingResponse struct {
	Id             uuid.UUID       `json:"id"`
	ShowtimeId     int             `json:"showtimeId"`
	Seats          []string        `json:"seats"`
	Status         string          `json:"status"`
	OriginalPrice  decimal.Decimal `json:"originalPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalPrice     decimal.Decimal `json:"finalPrice"`
	VoucherCode    *string         `json:"voucherCode,omitempty"`
	PaymentMethod  *string         `json:"paymentMethod,omitempty"`
	QrCode         *string         `json:"qrCode,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	ExpiresAt      time.Time       `json:"expiresAt"`
	PaymentAt      *time.Time      `json:"paymentAt,omitempty"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Metadata Metadata          `json:"metadata"`
}

type GetBookingsParams struct {
	Page     *int `validate:"omitempty,gt=0"`
	PageSize *int `validate:"omitempty,gt=0,lte=100"`
}

type SeatResponse struct {
	Code   string          `json:"code"`
	Row    string          `json:"row"`
	Col    int             `json:"col"`
	Type   string          `json:"type"`
	Status string          `json:"status"`
	Price  decimal.Decimal `json:"price"`
}

type SeatMapResponse struct {
	ShowtimeId     int            `json:"showtimeId"`
	MovieTitle     string         `json:"movieTitle"`
	CinemaName     string         `json:"cinemaName"`
	RoomName       string         `json:"roomName"`
	StartTime      time.Time      `json:"startTime"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	TotalSeats     int            `json:"totalSeats"`
	AvailableSeats int            `json:"availableSeats"`
	Seats          []SeatResponse `json:"seats"`
}

type CheckoutResponse struct {
	RedirectUrl string `json:"redirectUrl"`
}

type VoucherCheckRequest struct {
	Code       string          `json:"code" validate:"required,voucher_code"`
	OrderTotal decimal.Decimal `json:"orderTotal" validate:"required"`
}

type VoucherCheckResponse struct {
	Valid          bool             `json:"valid"`
	Reason         *string          `json:"reason,omitempty"`
	DiscountAmount *decimal.Decimal `json:"discountAmount,omitempty"`
	FinalPrice     *decimal.Decimal `json:"finalPrice,omitempty"`
}

type UserResponse struct {
	Id            int             `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	CurrentPoints int64           `json:"currentPoints"`
	TotalSpending decimal.Decimal `json:"totalSpending"`
	Rank          string          `json:"rank"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hvubui/cinebook/api"
	"github.com/hvubui/cinebook/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

func (app *Application) CreateBookingHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CreateBookingRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	booking, err := app.bookingRepo.Create(
		r.Context(),
		userId,
		input.ShowtimeId,
		input.Seats,
		input.VoucherCode,
		app.config.Booking.HoldTTL,
	)
	if err != nil {
		var seatNotFound domain.SeatNotFoundError
		var seatUnavailable domain.SeatUnavailableError
		var voucherInvalid domain.VoucherInvalidError

		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, fmt.Errorf("showtime %d not found", input.ShowtimeId))
		case errors.As(err, &seatNotFound):
			app.notFoundResponseWithErr(w, r, err)
		case errors.As(err, &seatUnavailable):
			app.editConflictResponseWithErr(w, r, err)
		case errors.As(err, &voucherInvalid):
			app.unprocessableEntityResponse(w, r, err)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.logger.Info("booking hold created",
		"bookingId", booking.ID,
		"userId", userId,
		"showtimeId", booking.ShowtimeID,
		"seats", strings.Join(booking.Seats, ","),
		"expiresAt", booking.ExpiresAt,
	)

	err = app.writeJSON(w, http.StatusCreated, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingsOfUserHandler(w http.ResponseWriter, r *http.Request) {
	params := api.GetBookingsParams{}

	if page := r.URL.Query().Get("page"); page != "" {
		if pageNum, err := strconv.Atoi(page); err == nil {
			params.Page = &pageNum
		}
	}

	if pageSize := r.URL.Query().Get("pageSize"); pageSize != "" {
		if pageSizeNum, err := strconv.Atoi(pageSize); err == nil {
			params.PageSize = &pageSizeNum
		}
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)
	pagination := toPagination(params)

	bookings, metadata, err := app.bookingRepo.GetAllByUserID(r.Context(), userId, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookingListResponse{
		Bookings: toBookingResponses(bookings),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingByIdHandler(w http.ResponseWriter, r *http.Request) {
	bookingId, err := readUUIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.bookingRepo.GetByID(r.Context(), bookingId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	if booking.UserID != app.contextGetUserId(r) {
		app.forbiddenResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	bookingId, err := readUUIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	booking, err := app.bookingRepo.Cancel(r.Context(), bookingId, userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrForbidden):
			app.forbiddenResponse(w, r)
		case errors.Is(err, domain.ErrAlreadySettled),
			errors.Is(err, domain.ErrBookingCancelled),
			errors.Is(err, domain.ErrBookingFailed):
			app.editConflictResponseWithErr(w, r, fmt.Errorf("booking is no longer pending"))
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.logger.Info("booking cancelled", "bookingId", booking.ID, "userId", userId)

	err = app.writeJSON(w, http.StatusOK, toBookingResponse(booking), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingResponse(b *domain.Booking) api.BookingResponse {
	return api.BookingResponse{
		Id:             b.ID,
		ShowtimeId:     b.ShowtimeID,
		Seats:          b.Seats,
		Status:         string(b.Status),
		OriginalPrice:  b.OriginalPrice,
		DiscountAmount: b.DiscountAmount,
		FinalPrice:     b.FinalPrice,
		VoucherCode:    b.VoucherCode,
		PaymentMethod:  b.PaymentMethod,
		QrCode:         b.QRCode,
		CreatedAt:      b.CreatedAt,
		ExpiresAt:      b.ExpiresAt,
		PaymentAt:      b.PaymentAt,
	}
}

func toBookingResponses(bookings []domain.Booking) []api.BookingResponse {
	responses := make([]api.BookingResponse, len(bookings))

	for i := range bookings {
		responses[i] = toBookingResponse(&bookings[i])
	}

	return responses
}

func toPagination(params api.GetBookingsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		PageSize:     metadata.PageSize,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		TotalRecords: metadata.TotalRecords,
	}
}

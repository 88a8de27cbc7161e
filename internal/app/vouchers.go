package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/hvubui/cinebook/api"
	"github.com/hvubui/cinebook/internal/domain"
)

// CheckVoucherHandler is the advisory pre-checkout voucher check. A positive
// answer promises nothing; the voucher is only consumed when a booking that
// carries it settles.
func (app *Application) CheckVoucherHandler(w http.ResponseWriter, r *http.Request) {
	var input api.VoucherCheckRequest

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

	voucher, err := app.voucherRepo.GetByCode(r.Context(), input.Code)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			reason := "voucher does not exist"
			app.writeJSON(w, http.StatusOK, api.VoucherCheckResponse{Valid: false, Reason: &reason}, nil)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = voucher.Validate(time.Now(), input.OrderTotal)
	if err != nil {
		var invalidErr domain.VoucherInvalidError
		if errors.As(err, &invalidErr) {
			app.writeJSON(w, http.StatusOK, api.VoucherCheckResponse{Valid: false, Reason: &invalidErr.Reason}, nil)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	discount := voucher.Discount(input.OrderTotal)
	finalPrice := input.OrderTotal.Sub(discount)

	resp := api.VoucherCheckResponse{
		Valid:          true,
		DiscountAmount: &discount,
		FinalPrice:     &finalPrice,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

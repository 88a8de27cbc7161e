package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/hvubui/cinebook/api"
	"github.com/hvubui/cinebook/internal/domain"
)

const paymentMethodCard = "card"

func (app *Application) CreateCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	bookingId, err := readUUIDParam(r, "bookingID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	booking, err := app.bookingRepo.GetByID(r.Context(), bookingId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	// Same gate as settlement: only the owner's live pending hold can be
	// taken to checkout.
	err = booking.SettleCheck(userId, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			app.forbiddenResponse(w, r)
		case errors.Is(err, domain.ErrBookingExpired):
			app.editConflictResponseWithErr(w, r, fmt.Errorf("booking hold has expired"))
		default:
			app.editConflictResponseWithErr(w, r, fmt.Errorf("booking is no longer pending"))
		}
		return
	}

	user, err := app.userRepo.GetByID(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	showtime, err := app.showtimeRepo.GetByID(r.Context(), booking.ShowtimeID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	order, err := app.paymentProvider.CreateOrder(r.Context(), user, booking, showtime)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.bookingRepo.AttachPaymentOrder(r.Context(), booking.ID, userId, paymentMethodCard, order.TransactionID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CheckoutResponse{
		RedirectUrl: order.RedirectURL,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// StripeWebhookHandler settles or fails bookings from Stripe checkout events.
// Stripe retries deliveries, so every branch has to be idempotent; an
// already-settled booking acknowledges with 200 and changes nothing.
func (app *Application) StripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), app.config.Stripe.WebhookSecret)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("webhook signature verification failed"))
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		app.handleCheckoutCompleted(w, r, event)
	case "checkout.session.expired", "checkout.session.async_payment_failed":
		app.handleCheckoutFailed(w, r, event)
	default:
		app.logger.Info("ignoring stripe event", "type", event.Type)
		w.WriteHeader(http.StatusOK)
	}
}

func (app *Application) handleCheckoutCompleted(w http.ResponseWriter, r *http.Request, event stripe.Event) {
	session, bookingId, userId, err := parseCheckoutSession(event)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.bookingRepo.Finalize(r.Context(), bookingId, userId, paymentMethodCard, session.ID, app.ticket)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadySettled) {
			app.logger.Info("duplicate settlement ignored", "bookingId", bookingId)
			w.WriteHeader(http.StatusOK)
			return
		}

		app.logger.Error("settlement failed", "bookingId", bookingId, "error", err.Error())
		app.serverErrorResponse(w, r, err)
		return
	}

	app.logger.Info("booking settled",
		"bookingId", booking.ID,
		"userId", booking.UserID,
		"finalPrice", booking.FinalPrice,
	)

	app.background(func() {
		app.sendTicketConfirmation(booking)
	})

	w.WriteHeader(http.StatusOK)
}

func (app *Application) handleCheckoutFailed(w http.ResponseWriter, r *http.Request, event stripe.Event) {
	session, bookingId, _, err := parseCheckoutSession(event)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	booking, err := app.bookingRepo.Fail(r.Context(), bookingId, session.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadySettled),
			errors.Is(err, domain.ErrBookingCancelled),
			errors.Is(err, domain.ErrBookingFailed):
			// booking already left pending, nothing to fail
			w.WriteHeader(http.StatusOK)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.logger.Info("booking payment failed", "bookingId", booking.ID, "event", event.Type)

	w.WriteHeader(http.StatusOK)
}

func parseCheckoutSession(event stripe.Event) (*stripe.CheckoutSession, uuid.UUID, int, error) {
	var session stripe.CheckoutSession

	err := json.Unmarshal(event.Data.Raw, &session)
	if err != nil {
		return nil, uuid.Nil, 0, fmt.Errorf("parsing checkout session: %w", err)
	}

	bookingId, err := uuid.Parse(session.Metadata["booking_id"])
	if err != nil {
		return nil, uuid.Nil, 0, fmt.Errorf("invalid booking_id in session metadata")
	}

	userId, err := strconv.Atoi(session.Metadata["user_id"])
	if err != nil {
		return nil, uuid.Nil, 0, fmt.Errorf("invalid user_id in session metadata")
	}

	return &session, bookingId, userId, nil
}

func (app *Application) sendTicketConfirmation(booking *domain.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := app.userRepo.GetByID(ctx, booking.UserID)
	if err != nil {
		app.logger.Error("fetching user for ticket confirmation", "bookingId", booking.ID, "error", err.Error())
		return
	}

	showtime, err := app.showtimeRepo.GetByID(ctx, booking.ShowtimeID)
	if err != nil {
		app.logger.Error("fetching showtime for ticket confirmation", "bookingId", booking.ID, "error", err.Error())
		return
	}

	qrCode := ""
	if booking.QRCode != nil {
		qrCode = *booking.QRCode
	}

	data := map[string]any{
		"Name":         user.Name,
		"MovieTitle":   showtime.MovieTitle,
		"CinemaName":   showtime.CinemaName,
		"RoomName":     showtime.RoomName,
		"StartTime":    showtime.StartTime.Format("Jan 2, 2006 15:04"),
		"Seats":        strings.Join(booking.Seats, ", "),
		"BookingID":    booking.ID.String(),
		"FinalPrice":   booking.FinalPrice.String(),
		"PointsEarned": domain.LoyaltyPoints(app.loyaltyAccrual.Base(booking)),
		"QRCode":       qrCode,
	}

	err = app.mailer.Send(user.Email, "ticket_confirmation.tmpl", data)
	if err != nil {
		app.logger.Error("sending ticket confirmation", "bookingId", booking.ID, "error", err.Error())
	}
}

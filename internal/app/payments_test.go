package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/hvubui/cinebook/api"
	"github.com/hvubui/cinebook/internal/domain"
	"github.com/hvubui/cinebook/internal/mocks"
	"github.com/hvubui/cinebook/internal/payment"
)

func testUser() *domain.User {
	return &domain.User{
		ID:    7,
		Email: "moviegoer@example.com",
		Name:  "Moviegoer",
		Rank:  domain.RankStandard,
	}
}

func TestCreateCheckoutHandler(t *testing.T) {
	t.Run("creates a payment order for a live pending hold", func(t *testing.T) {
		booking := pendingBooking(7)

		bookingRepo := &mocks.MockBookingRepo{}
		bookingRepo.On("GetByID", mock.Anything, booking.ID).Return(booking, nil)
		bookingRepo.
			On("AttachPaymentOrder", mock.Anything, booking.ID, 7, "card", "cs_test_"+booking.ID.String()).
			Return(nil)

		provider := payment.NewMockPaymentProvider()

		app := newTestApplication(func(a *Application) {
			a.bookingRepo = bookingRepo
			a.userRepo = &mocks.MockUserRepo{GetByIDFunc: func(ctx context.Context, id int) (*domain.User, error) {
				return testUser(), nil
			}}
			a.showtimeRepo = &mocks.MockShowtimeRepo{GetByIDFunc: func(ctx context.Context, id int) (*domain.Showtime, error) {
				return &domain.Showtime{ID: id, MovieTitle: "Dune"}, nil
			}}
			a.paymentProvider = provider
		})

		w, r := executeRequest(t, http.MethodPost, "/bookings/"+booking.ID.String()+"/checkout", nil)
		r = authenticatedRequest(r, 7)
		r = withURLParam(r, "bookingID", booking.ID.String())

		app.CreateCheckoutHandler(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.CheckoutResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

		assert.Equal(t, "https://checkout.example.com/"+booking.ID.String(), resp.RedirectUrl)
		assert.Len(t, provider.Orders, 1)
		bookingRepo.AssertExpectations(t)
	})

	t.Run("rejects an expired hold", func(t *testing.T) {
		booking := pendingBooking(7)
		booking.ExpiresAt = time.Now().Add(-time.Minute)

		bookingRepo := &mocks.MockBookingRepo{}
		bookingRepo.On("GetByID", mock.Anything, booking.ID).Return(booking, nil)

		app := newTestApplication(func(a *Application) {
			a.bookingRepo = bookingRepo
		})

		w, r := executeRequest(t, http.MethodPost, "/bookings/"+booking.ID.String()+"/checkout", nil)
		r = authenticatedRequest(r, 7)
		r = withURLParam(r, "bookingID", booking.ID.String())

		app.CreateCheckoutHandler(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects another user's booking", func(t *testing.T) {
		booking := pendingBooking(7)

		bookingRepo := &mocks.MockBookingRepo{}
		bookingRepo.On("GetByID", mock.Anything, booking.ID).Return(booking, nil)

		app := newTestApplication(func(a *Application) {
			a.bookingRepo = bookingRepo
		})

		w, r := executeRequest(t, http.MethodPost, "/bookings/"+booking.ID.String()+"/checkout", nil)
		r = authenticatedRequest(r, 8)
		r = withURLParam(r, "bookingID", booking.ID.String())

		app.CreateCheckoutHandler(w, r)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestStripeWebhookHandlerRejectsBadSignature(t *testing.T) {
	app := newTestApplication()
	app.config.Stripe.WebhookSecret = "whsec_test"

	w, r := executeRequest(t, http.MethodPost, "/payments/webhook", map[string]string{"type": "checkout.session.completed"})
	r.Header.Set("Stripe-Signature", "t=123,v1=deadbeef")

	app.StripeWebhookHandler(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseCheckoutSession(t *testing.T) {
	booking := pendingBooking(7)

	newEvent := func(metadata map[string]string) stripe.Event {
		raw, err := json.Marshal(map[string]any{
			"id":       "cs_test_123",
			"metadata": metadata,
		})
		require.NoError(t, err)

		return stripe.Event{Data: &stripe.EventData{Raw: raw}}
	}

	t.Run("extracts the booking and user from session metadata", func(t *testing.T) {
		event := newEvent(map[string]string{
			"booking_id": booking.ID.String(),
			"user_id":    "7",
		})

		session, bookingId, userId, err := parseCheckoutSession(event)
		require.NoError(t, err)

		assert.Equal(t, "cs_test_123", session.ID)
		assert.Equal(t, booking.ID, bookingId)
		assert.Equal(t, 7, userId)
	})

	t.Run("rejects missing booking metadata", func(t *testing.T) {
		event := newEvent(map[string]string{"user_id": "7"})

		_, _, _, err := parseCheckoutSession(event)
		assert.Error(t, err)
	})

	t.Run("rejects a non-numeric user id", func(t *testing.T) {
		event := newEvent(map[string]string{
			"booking_id": booking.ID.String(),
			"user_id":    "seven",
		})

		_, _, _, err := parseCheckoutSession(event)
		assert.Error(t, err)
	})
}

func TestHandleCheckoutCompletedIsIdempotent(t *testing.T) {
	booking := pendingBooking(7)

	raw, err := json.Marshal(map[string]any{
		"id": "cs_test_123",
		"metadata": map[string]string{
			"booking_id": booking.ID.String(),
			"user_id":    "7",
		},
	})
	require.NoError(t, err)

	event := stripe.Event{
		Type: "checkout.session.completed",
		Data: &stripe.EventData{Raw: raw},
	}

	bookingRepo := &mocks.MockBookingRepo{}
	bookingRepo.
		On("Finalize", mock.Anything, booking.ID, 7, "card", "cs_test_123", mock.Anything).
		Return(booking, fmt.Errorf("wrapped: %w", domain.ErrAlreadySettled))

	app := newTestApplication(func(a *Application) {
		a.bookingRepo = bookingRepo
	})

	w, r := executeRequest(t, http.MethodPost, "/payments/webhook", nil)

	app.handleCheckoutCompleted(w, r, event)

	assert.Equal(t, http.StatusOK, w.Code)
	bookingRepo.AssertExpectations(t)
}

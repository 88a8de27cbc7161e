package payment

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	"github.com/hvubui/cinebook/internal/domain"
)

type StripePaymentProvider struct {
	successUrl string
	failureUrl string
}

func NewStripePaymentProvider(successUrl, failureUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		successUrl: successUrl,
		failureUrl: failureUrl,
	}
}

// CreateOrder opens a Stripe Checkout session for a pending booking. The
// booking and user ids travel in the session metadata so the webhook can
// route the settlement back to the right booking. Prices are in VND, a
// zero-decimal currency, so amounts go to Stripe as whole dong.
func (s *StripePaymentProvider) CreateOrder(
	ctx context.Context,
	user *domain.User,
	booking *domain.Booking,
	showtime *domain.Showtime) (*domain.PaymentOrder, error) {

	params := &stripe.CheckoutSessionParams{
		LineItems:  lineItems(booking, showtime),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl),
		CancelURL:  stripe.String(s.failureUrl),
		Metadata: map[string]string{
			"booking_id": booking.ID.String(),
			"user_id":    strconv.Itoa(user.ID),
		},
		CustomerEmail:     &user.Email,
		ClientReferenceID: stripe.String(booking.ID.String()),
	}
	params.Context = ctx

	checkoutSession, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating stripe checkout session: %w", err)
	}

	return &domain.PaymentOrder{
		RedirectURL:   checkoutSession.URL,
		TransactionID: checkoutSession.ID,
	}, nil
}

// lineItems lists one item per seat at its full price. A discounted booking
// collapses into a single item at the final price instead, because Stripe
// discounts need a pre-registered coupon and the voucher math already
// happened when the hold was priced.
func lineItems(booking *domain.Booking, showtime *domain.Showtime) []*stripe.CheckoutSessionLineItemParams {
	description := fmt.Sprintf(
		"%s • %s • %s",
		showtime.CinemaName,
		showtime.RoomName,
		showtime.StartTime.Format("Jan 2, 2006 15:04"),
	)

	if booking.DiscountAmount.IsPositive() {
		name := fmt.Sprintf("🎬 %s - %d ticket(s), voucher applied", showtime.MovieTitle, len(booking.Seats))

		return []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyVND)),
					UnitAmount: stripe.Int64(booking.FinalPrice.IntPart()),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(name),
						Description: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		}
	}

	var items []*stripe.CheckoutSessionLineItemParams

	for _, code := range booking.Seats {
		seat := showtime.SeatMap[code]
		name := fmt.Sprintf("🎬 %s - Seat %s (%s)", showtime.MovieTitle, seat.Code, seat.Type)

		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyVND)),
				UnitAmount: stripe.Int64(seat.Price.IntPart()),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(name),
					Description: stripe.String(description),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	return items
}

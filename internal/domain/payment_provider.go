package domain

import "context"

// PaymentOrder is the provider's answer to an order creation: where to send
// the buyer, and the provider-side id the webhook will echo back.
type PaymentOrder struct {
	RedirectURL   string
	TransactionID string
}

type PaymentProvider interface {
	CreateOrder(ctx context.Context, user *User, booking *Booking, showtime *Showtime) (*PaymentOrder, error)
}

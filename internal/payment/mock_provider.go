package payment

import (
	"context"

	"github.com/hvubui/cinebook/internal/domain"
)

type MockPaymentProvider struct {
	Orders []domain.PaymentOrder
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) CreateOrder(
	ctx context.Context,
	user *domain.User,
	booking *domain.Booking,
	showtime *domain.Showtime) (*domain.PaymentOrder, error) {

	order := domain.PaymentOrder{
		RedirectURL:   "https://checkout.example.com/" + booking.ID.String(),
		TransactionID: "cs_test_" + booking.ID.String(),
	}

	m.Orders = append(m.Orders, order)

	return &order, nil
}

package mocks

import (
	"context"

	"github.com/hvubui/cinebook/internal/domain"
)

type MockVoucherRepo struct {
	domain.VoucherRepository
	GetByCodeFunc func(ctx context.Context, code string) (*domain.Voucher, error)
}

func (m *MockVoucherRepo) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	return m.GetByCodeFunc(ctx, code)
}

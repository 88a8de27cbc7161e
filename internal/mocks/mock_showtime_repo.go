package mocks

import (
	"context"

	"github.com/hvubui/cinebook/internal/domain"
)

type MockShowtimeRepo struct {
	domain.ShowtimeRepository
	GetByIDFunc func(ctx context.Context, id int) (*domain.Showtime, error)
}

func (m *MockShowtimeRepo) GetByID(ctx context.Context, id int) (*domain.Showtime, error) {
	return m.GetByIDFunc(ctx, id)
}

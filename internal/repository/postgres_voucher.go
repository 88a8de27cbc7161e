package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hvubui/cinebook/internal/domain"
)

type PostgresVoucherRepository struct {
	db *pgxpool.Pool
}

func NewPostgresVoucherRepository(db *pgxpool.Pool) *PostgresVoucherRepository {
	return &PostgresVoucherRepository{
		db: db,
	}
}

func (p *PostgresVoucherRepository) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	return getVoucherByCode(ctx, p.db, code)
}

func getVoucherByCode(ctx context.Context, q queryer, code string) (*domain.Voucher, error) {
	query := `
		SELECT
			code, description, discount_type, discount_value, max_discount,
			min_order_value, usage_limit, used_count, valid_from, valid_to,
			is_active, created_at, updated_at
		FROM vouchers
		WHERE code = $1
	`

	var voucher domain.Voucher

	err := q.QueryRow(ctx, query, code).Scan(
		&voucher.Code,
		&voucher.Description,
		&voucher.DiscountType,
		&voucher.DiscountValue,
		&voucher.MaxDiscount,
		&voucher.MinOrderValue,
		&voucher.UsageLimit,
		&voucher.UsedCount,
		&voucher.ValidFrom,
		&voucher.ValidTo,
		&voucher.IsActive,
		&voucher.CreatedAt,
		&voucher.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &voucher, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hvubui/cinebook/internal/domain"
)

type PostgresBookingRepository struct {
	db      *pgxpool.Pool
	accrual domain.LoyaltyAccrual
}

func NewPostgresBookingRepository(db *pgxpool.Pool, accrual domain.LoyaltyAccrual) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db:      db,
		accrual: accrual,
	}
}

// Create places a hold on the requested seats. Seat validation, pricing,
// voucher validation, the seat-map flip to held and the booking insert run in
// one serializable transaction: either every requested seat ends up held by
// the new booking, or nothing is written. Overlapping concurrent holds are
// decided by the transaction's conflict detection; the loser sees
// SeatUnavailable on re-read or an edit conflict.
func (p *PostgresBookingRepository) Create(
	ctx context.Context,
	userID, showtimeID int,
	seatCodes []string,
	voucherCode *string,
	ttl time.Duration) (*domain.Booking, error) {

	var booking *domain.Booking

	err := runInSerializableTx(ctx, p.db, func(tx pgx.Tx) error {
		showtime, err := getShowtimeWithSeats(ctx, tx, showtimeID)
		if err != nil {
			return err
		}

		var voucher *domain.Voucher
		if voucherCode != nil {
			voucher, err = getVoucherByCode(ctx, tx, *voucherCode)
			if err != nil {
				if errors.Is(err, domain.ErrRecordNotFound) {
					return domain.VoucherInvalidError{Code: *voucherCode, Reason: "voucher does not exist"}
				}

				return err
			}
		}

		now := time.Now()

		b, err := domain.NewHold(showtime, userID, seatCodes, voucher, ttl, now)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO bookings (
				id, user_id, showtime_id, seats, status,
				original_price, discount_amount, final_price, voucher_code,
				created_at, updated_at, expires_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`

		_, err = tx.Exec(ctx, query,
			b.ID, b.UserID, b.ShowtimeID, b.Seats, b.Status,
			b.OriginalPrice, b.DiscountAmount, b.FinalPrice, b.VoucherCode,
			b.CreatedAt, b.UpdatedAt, b.ExpiresAt,
		)
		if err != nil {
			return err
		}

		err = holdSeats(ctx, tx, showtimeID, b.ID, b.Seats)
		if err != nil {
			return err
		}

		booking = b

		return nil
	})

	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (p *PostgresBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return getBookingByID(ctx, p.db, id)
}

func (p *PostgresBookingRepository) GetAllByUserID(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			id, user_id, showtime_id, seats, status,
			original_price, discount_amount, final_price, voucher_code,
			payment_method, provider_transaction_id, qr_code,
			created_at, updated_at, expires_at, payment_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	totalRecords := 0

	for rows.Next() {
		var b domain.Booking

		err = rows.Scan(
			&totalRecords,
			&b.ID, &b.UserID, &b.ShowtimeID, &b.Seats, &b.Status,
			&b.OriginalPrice, &b.DiscountAmount, &b.FinalPrice, &b.VoucherCode,
			&b.PaymentMethod, &b.ProviderTransactionID, &b.QRCode,
			&b.CreatedAt, &b.UpdatedAt, &b.ExpiresAt, &b.PaymentAt,
		)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return bookings, metadata, nil
}

func (p *PostgresBookingRepository) AttachPaymentOrder(
	ctx context.Context,
	id uuid.UUID,
	userID int,
	method, transactionID string) error {

	query := `
		UPDATE bookings
		SET payment_method = $1, provider_transaction_id = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4 AND status = 'pending'
	`

	tag, err := p.db.Exec(ctx, query, method, transactionID, id, userID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEditConflict
	}

	return nil
}

// Finalize settles a pending booking: loyalty credit, voucher consumption,
// the held→sold seat flip, the ticket payload and the status change commit
// together or not at all. A retried settlement of an already-paid booking
// returns the stored booking with domain.ErrAlreadySettled and writes
// nothing, so duplicate webhooks never double-credit points or double-consume
// the voucher.
func (p *PostgresBookingRepository) Finalize(
	ctx context.Context,
	id uuid.UUID,
	userID int,
	method, transactionID string,
	ticket domain.TicketFunc) (*domain.Booking, error) {

	var booking *domain.Booking

	err := runInSerializableTx(ctx, p.db, func(tx pgx.Tx) error {
		b, err := getBookingByID(ctx, tx, id)
		if err != nil {
			return err
		}

		now := time.Now()

		if err = b.SettleCheck(userID, now); err != nil {
			if errors.Is(err, domain.ErrAlreadySettled) {
				booking = b
			}

			return err
		}

		if err = creditLoyalty(ctx, tx, b, p.accrual); err != nil {
			return err
		}

		if b.VoucherCode != nil {
			if err = consumeVoucher(ctx, tx, *b.VoucherCode); err != nil {
				return err
			}
		}

		if err = sellSeats(ctx, tx, b.ShowtimeID, b.ID, b.Seats); err != nil {
			return err
		}

		start, err := getShowtimeStart(ctx, tx, b.ShowtimeID)
		if err != nil {
			return err
		}

		qrCode, err := ticket(b, start)
		if err != nil {
			return err
		}

		query := `
			UPDATE bookings
			SET status = 'paid', payment_method = $1, provider_transaction_id = $2,
				qr_code = $3, payment_at = $4, updated_at = $4
			WHERE id = $5
		`

		_, err = tx.Exec(ctx, query, method, transactionID, qrCode, now, b.ID)
		if err != nil {
			return err
		}

		b.Status = domain.BookingPaid
		b.PaymentMethod = &method
		b.ProviderTransactionID = &transactionID
		b.QRCode = &qrCode
		b.PaymentAt = &now
		b.UpdatedAt = now

		booking = b

		return nil
	})

	if errors.Is(err, domain.ErrAlreadySettled) {
		return booking, err
	}
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// Fail marks a pending booking failed after the provider reported a payment
// failure, releasing its held seats in the same transaction.
func (p *PostgresBookingRepository) Fail(ctx context.Context, id uuid.UUID, transactionID string) (*domain.Booking, error) {
	var booking *domain.Booking

	err := runInSerializableTx(ctx, p.db, func(tx pgx.Tx) error {
		b, err := getBookingByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if b.Status != domain.BookingPending {
			return settledStateError(b.Status)
		}

		if err = releaseSeats(ctx, tx, b.ShowtimeID, b.ID, b.Seats); err != nil {
			return err
		}

		now := time.Now()

		query := `
			UPDATE bookings
			SET status = 'failed', provider_transaction_id = $1, updated_at = $2
			WHERE id = $3
		`

		_, err = tx.Exec(ctx, query, transactionID, now, b.ID)
		if err != nil {
			return err
		}

		b.Status = domain.BookingFailed
		b.ProviderTransactionID = &transactionID
		b.UpdatedAt = now

		booking = b

		return nil
	})

	if err != nil {
		return nil, err
	}

	return booking, nil
}

// Cancel is the user-initiated pending→cancelled transition.
func (p *PostgresBookingRepository) Cancel(ctx context.Context, id uuid.UUID, userID int) (*domain.Booking, error) {
	var booking *domain.Booking

	err := runInSerializableTx(ctx, p.db, func(tx pgx.Tx) error {
		b, err := getBookingByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if err = b.CancelCheck(userID); err != nil {
			return err
		}

		if err = releaseSeats(ctx, tx, b.ShowtimeID, b.ID, b.Seats); err != nil {
			return err
		}

		now := time.Now()

		query := `UPDATE bookings SET status = 'cancelled', updated_at = $1 WHERE id = $2`

		_, err = tx.Exec(ctx, query, now, b.ID)
		if err != nil {
			return err
		}

		b.Status = domain.BookingCancelled
		b.UpdatedAt = now

		booking = b

		return nil
	})

	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (p *PostgresBookingRepository) DueForExpiry(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM bookings
		WHERE status = 'pending' AND expires_at < $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := p.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)

	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CancelExpired reclaims one expired hold. The booking is re-read inside the
// transaction: a booking that was settled or cancelled since the sweep
// candidate query ran is skipped, so the sweeper can race a settlement
// safely.
func (p *PostgresBookingRepository) CancelExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	cancelled := false

	err := runInSerializableTx(ctx, p.db, func(tx pgx.Tx) error {
		b, err := getBookingByID(ctx, tx, id)
		if err != nil {
			return err
		}

		now := time.Now()

		if b.Status != domain.BookingPending || !b.Expired(now) {
			return nil
		}

		if err = releaseSeats(ctx, tx, b.ShowtimeID, b.ID, b.Seats); err != nil {
			return err
		}

		query := `UPDATE bookings SET status = 'cancelled', updated_at = $1 WHERE id = $2`

		_, err = tx.Exec(ctx, query, now, b.ID)
		if err != nil {
			return err
		}

		cancelled = true

		return nil
	})

	if err != nil {
		return false, err
	}

	return cancelled, nil
}

func getBookingByID(ctx context.Context, q queryer, id uuid.UUID) (*domain.Booking, error) {
	query := `
		SELECT
			id, user_id, showtime_id, seats, status,
			original_price, discount_amount, final_price, voucher_code,
			payment_method, provider_transaction_id, qr_code,
			created_at, updated_at, expires_at, payment_at
		FROM bookings
		WHERE id = $1
	`

	var b domain.Booking

	err := q.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.ShowtimeID, &b.Seats, &b.Status,
		&b.OriginalPrice, &b.DiscountAmount, &b.FinalPrice, &b.VoucherCode,
		&b.PaymentMethod, &b.ProviderTransactionID, &b.QRCode,
		&b.CreatedAt, &b.UpdatedAt, &b.ExpiresAt, &b.PaymentAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &b, nil
}

// holdSeats flips available seats to held by the booking. The affected-row
// check backs up the in-transaction validation: any seat grabbed by a
// concurrent writer fails the whole transaction.
func holdSeats(ctx context.Context, q queryer, showtimeID int, bookingID uuid.UUID, seats []string) error {
	query := `
		UPDATE showtime_seats
		SET status = 'held', holder_id = $1
		WHERE showtime_id = $2 AND code = ANY($3) AND status = 'available'
	`

	tag, err := q.Exec(ctx, query, bookingID, showtimeID, seats)
	if err != nil {
		return err
	}

	if tag.RowsAffected() != int64(len(seats)) {
		return domain.SeatUnavailableError{Seats: seats}
	}

	return adjustAvailableSeats(ctx, q, showtimeID, -len(seats))
}

// sellSeats flips seats held by this booking to sold. A mismatch means an
// invariant was violated elsewhere and must abort the settlement.
func sellSeats(ctx context.Context, q queryer, showtimeID int, bookingID uuid.UUID, seats []string) error {
	query := `
		UPDATE showtime_seats
		SET status = 'sold'
		WHERE showtime_id = $1 AND code = ANY($2) AND status = 'held' AND holder_id = $3
	`

	tag, err := q.Exec(ctx, query, showtimeID, seats, bookingID)
	if err != nil {
		return err
	}

	if tag.RowsAffected() != int64(len(seats)) {
		return domain.ErrSeatStateConflict
	}

	return nil
}

// releaseSeats returns to available only the seats still held by this
// booking; seats that moved on are left alone.
func releaseSeats(ctx context.Context, q queryer, showtimeID int, bookingID uuid.UUID, seats []string) error {
	query := `
		UPDATE showtime_seats
		SET status = 'available', holder_id = NULL
		WHERE showtime_id = $1 AND code = ANY($2) AND status = 'held' AND holder_id = $3
	`

	tag, err := q.Exec(ctx, query, showtimeID, seats, bookingID)
	if err != nil {
		return err
	}

	released := int(tag.RowsAffected())
	if released == 0 {
		return nil
	}

	return adjustAvailableSeats(ctx, q, showtimeID, released)
}

func adjustAvailableSeats(ctx context.Context, q queryer, showtimeID, delta int) error {
	query := `UPDATE showtimes SET available_seats = available_seats + $1, updated_at = NOW() WHERE id = $2`

	_, err := q.Exec(ctx, query, delta, showtimeID)
	return err
}

func creditLoyalty(ctx context.Context, q queryer, b *domain.Booking, accrual domain.LoyaltyAccrual) error {
	var totalSpending decimal.Decimal

	err := q.QueryRow(ctx, `SELECT total_spending FROM users WHERE id = $1`, b.UserID).Scan(&totalSpending)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	}

	base := accrual.Base(b)
	points := domain.LoyaltyPoints(base)
	newSpending := totalSpending.Add(base)
	newRank := domain.RankForSpending(newSpending)

	query := `
		UPDATE users
		SET current_points = current_points + $1, total_spending = $2, rank = $3, updated_at = NOW()
		WHERE id = $4
	`

	_, err = q.Exec(ctx, query, points, newSpending, newRank, b.UserID)
	return err
}

// consumeVoucher is the voucher's first real consumption; the guard on
// usage_limit makes the increment safe against concurrent settlements.
func consumeVoucher(ctx context.Context, q queryer, code string) error {
	query := `
		UPDATE vouchers
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE code = $1 AND used_count < usage_limit
	`

	tag, err := q.Exec(ctx, query, code)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrVoucherExhausted
	}

	return nil
}

func settledStateError(status domain.BookingStatus) error {
	switch status {
	case domain.BookingPaid:
		return domain.ErrAlreadySettled
	case domain.BookingCancelled:
		return domain.ErrBookingCancelled
	default:
		return domain.ErrBookingFailed
	}
}

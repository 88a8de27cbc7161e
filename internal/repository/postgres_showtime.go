package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hvubui/cinebook/internal/domain"
)

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

func (p *PostgresShowtimeRepository) GetByID(ctx context.Context, id int) (*domain.Showtime, error) {
	return getShowtimeWithSeats(ctx, p.db, id)
}

func getShowtimeWithSeats(ctx context.Context, q queryer, id int) (*domain.Showtime, error) {
	query := `
		SELECT
			id, movie_title, cinema_name, room_name, region_id,
			start_time, end_time, base_price, total_seats, available_seats,
			created_at, updated_at
		FROM showtimes
		WHERE id = $1
	`

	var showtime domain.Showtime

	err := q.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieTitle,
		&showtime.CinemaName,
		&showtime.RoomName,
		&showtime.RegionID,
		&showtime.StartTime,
		&showtime.EndTime,
		&showtime.BasePrice,
		&showtime.TotalSeats,
		&showtime.AvailableSeats,
		&showtime.CreatedAt,
		&showtime.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	seatMap, err := getSeatMap(ctx, q, id)
	if err != nil {
		return nil, err
	}

	showtime.SeatMap = seatMap

	return &showtime, nil
}

func getSeatMap(ctx context.Context, q queryer, showtimeID int) (map[string]domain.Seat, error) {
	query := `
		SELECT code, seat_row, seat_col, seat_type, price, status, holder_id
		FROM showtime_seats
		WHERE showtime_id = $1
	`

	rows, err := q.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seatMap := make(map[string]domain.Seat)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&seat.Code,
			&seat.Row,
			&seat.Col,
			&seat.Type,
			&seat.Price,
			&seat.Status,
			&seat.HolderID,
		)
		if err != nil {
			return nil, err
		}

		seatMap[seat.Code] = seat
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seatMap, nil
}

func getShowtimeStart(ctx context.Context, q queryer, id int) (time.Time, error) {
	query := `SELECT start_time FROM showtimes WHERE id = $1`

	var start time.Time

	err := q.QueryRow(ctx, query, id).Scan(&start)
	if errors.Is(err, pgx.ErrNoRows) {
		err = domain.ErrRecordNotFound
	}

	return start, err
}

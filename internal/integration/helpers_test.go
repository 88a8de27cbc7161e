package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/hvubui/cinebook/internal/app"
	"github.com/hvubui/cinebook/internal/domain"
	"github.com/hvubui/cinebook/internal/mailer"
	"github.com/hvubui/cinebook/internal/payment"
	"github.com/hvubui/cinebook/internal/repository"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
	"id":        {},
	"expiresAt": {},
}

// TestApp bundles the HTTP application with direct handles on the database
// and the repositories, so tests can seed rows and drive settlement without
// fabricating signed provider webhooks.
type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	BookingRepo *repository.PostgresBookingRepository
	Provider    *payment.MockPaymentProvider
	Mailer      *mailer.MockMailer
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	provider := payment.NewMockPaymentProvider()
	mockMailer := mailer.NewMockMailer()

	application, err := app.NewApplication(cfg, app.WithPaymentProvider(provider), app.WithMailer(mockMailer))
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.New(context.Background(), cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	return &TestApp{
		App:         application,
		DB:          db,
		BookingRepo: repository.NewPostgresBookingRepository(db, domain.AccrualFinal),
		Provider:    provider,
		Mailer:      mockMailer,
	}, nil
}

func (a *TestApp) Close() {
	a.DB.Close()
	a.App.Close()
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

// sessionCookie mints an authenticated session for userId and returns the
// cookie carrying its token.
func sessionCookie(t testing.TB, testApp *TestApp, userId int) *http.Cookie {
	t.Helper()

	sm := testApp.App.SessionManager()

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	sm.Put(ctx, "userID", userId)

	token, _, err := sm.Commit(ctx)
	require.NoError(t, err)

	return &http.Cookie{Name: sm.Cookie.Name, Value: token}
}

func seedUser(t testing.TB, db *pgxpool.Pool, email string) int {
	t.Helper()

	var id int
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (email, name) VALUES ($1, 'Moviegoer') RETURNING id
	`, email).Scan(&id)
	require.NoError(t, err)

	return id
}

func seedShowtime(t testing.TB, db *pgxpool.Pool, seats map[string]domain.Seat) int {
	t.Helper()

	ctx := context.Background()
	start := time.Now().Add(24 * time.Hour)

	available := 0
	for _, seat := range seats {
		if seat.Status == domain.SeatAvailable {
			available++
		}
	}

	var id int
	err := db.QueryRow(ctx, `
		INSERT INTO showtimes (movie_title, cinema_name, room_name, region_id,
			start_time, end_time, base_price, total_seats, available_seats)
		VALUES ('Dune', 'CineBook Landmark', 'Room 4', 'hcm', $1, $2, 90000, $3, $4)
		RETURNING id
	`, start, start.Add(2*time.Hour), len(seats), available).Scan(&id)
	require.NoError(t, err)

	for _, seat := range seats {
		_, err = db.Exec(ctx, `
			INSERT INTO showtime_seats (showtime_id, code, seat_row, seat_col, seat_type, price, status, holder_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, seat.Code, seat.Row, seat.Col, seat.Type, seat.Price, seat.Status, seat.HolderID)
		require.NoError(t, err)
	}

	return id
}

func standardSeats(codes ...string) map[string]domain.Seat {
	seats := make(map[string]domain.Seat, len(codes))

	for i, code := range codes {
		seats[code] = domain.Seat{
			Code:   code,
			Row:    code[:1],
			Col:    i + 1,
			Type:   domain.SeatTypeStandard,
			Price:  decimal.NewFromInt(90_000),
			Status: domain.SeatAvailable,
		}
	}

	return seats
}

func seedVoucher(t testing.TB, db *pgxpool.Pool, code string, usageLimit int) {
	t.Helper()

	now := time.Now()

	_, err := db.Exec(context.Background(), `
		INSERT INTO vouchers (code, discount_type, discount_value, max_discount, min_order_value,
			usage_limit, valid_from, valid_to, is_active)
		VALUES ($1, 'percent', 10, 20000, 100000, $2, $3, $4, true)
	`, code, usageLimit, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
}

func seatStatus(t testing.TB, db *pgxpool.Pool, showtimeId int, code string) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(), `
		SELECT status FROM showtime_seats WHERE showtime_id = $1 AND code = $2
	`, showtimeId, code).Scan(&status)
	require.NoError(t, err)

	return status
}

func availableSeatCount(t testing.TB, db *pgxpool.Pool, showtimeId int) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(), `
		SELECT available_seats FROM showtimes WHERE id = $1
	`, showtimeId).Scan(&count)
	require.NoError(t, err)

	return count
}

func bookingStatus(t testing.TB, db *pgxpool.Pool, id uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(), `SELECT status FROM bookings WHERE id = $1`, id).Scan(&status)
	require.NoError(t, err)

	return status
}

func userLoyalty(t testing.TB, db *pgxpool.Pool, userId int) (int64, decimal.Decimal, string) {
	t.Helper()

	var points int64
	var spending decimal.Decimal
	var rank string

	err := db.QueryRow(context.Background(), `
		SELECT current_points, total_spending, rank FROM users WHERE id = $1
	`, userId).Scan(&points, &spending, &rank)
	require.NoError(t, err)

	return points, spending, rank
}

func voucherUsedCount(t testing.TB, db *pgxpool.Pool, code string) int {
	t.Helper()

	var used int
	err := db.QueryRow(context.Background(), `SELECT used_count FROM vouchers WHERE code = $1`, code).Scan(&used)
	require.NoError(t, err)

	return used
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

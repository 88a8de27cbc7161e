package app

import (
	"context"
	"time"
)

// runBookingSweeper reclaims expired holds on a fixed interval until ctx is
// cancelled. Each expired booking is handled in its own transaction, so one
// conflicting booking cannot wedge the whole sweep. Settlement re-checks
// expiry itself, which keeps a slow sweep from ever blocking correctness.
func (app *Application) runBookingSweeper(ctx context.Context) {
	ticker := time.NewTicker(app.config.Booking.SweepInterval)
	defer ticker.Stop()

	app.logger.Info("booking sweeper started", "interval", app.config.Booking.SweepInterval)

	for {
		select {
		case <-ctx.Done():
			app.logger.Info("booking sweeper stopped")
			return
		case <-ticker.C:
			app.sweepExpiredBookings(ctx)
		}
	}
}

func (app *Application) sweepExpiredBookings(ctx context.Context) {
	due, err := app.bookingRepo.DueForExpiry(ctx, time.Now(), app.config.Booking.SweepBatchSize)
	if err != nil {
		app.logger.Error("listing expired bookings", "error", err.Error())
		return
	}

	if len(due) == 0 {
		return
	}

	reclaimed := 0

	for _, id := range due {
		cancelled, err := app.bookingRepo.CancelExpired(ctx, id)
		if err != nil {
			app.logger.Error("reclaiming expired booking", "bookingId", id, "error", err.Error())
			continue
		}

		if cancelled {
			reclaimed++
		}
	}

	app.logger.Info("swept expired bookings", "due", len(due), "reclaimed", reclaimed)
}

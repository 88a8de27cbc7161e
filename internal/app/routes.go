package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("cinebook-api", otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/healthcheck", app.GetHealth)

	r.Get("/showtimes/{showtimeID}/seats", app.GetShowtimeSeatsHandler)

	r.Post("/vouchers/check", app.CheckVoucherHandler)

	r.With(app.requireAuthentication).Route("/bookings", func(r chi.Router) {
		r.Post("/", app.CreateBookingHandler)
		r.Get("/", app.GetBookingsOfUserHandler)
		r.Get("/{bookingID}", app.GetBookingByIdHandler)
		r.Delete("/{bookingID}", app.CancelBookingHandler)
		r.Post("/{bookingID}/checkout", app.CreateCheckoutHandler)
	})

	r.With(app.requireAuthentication).Get("/users/me", app.GetCurrentUser)

	r.Post("/payments/webhook", app.StripeWebhookHandler)

	return r
}

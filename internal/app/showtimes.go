package app

import (
	"errors"
	"net/http"
	"sort"

	"github.com/hvubui/cinebook/api"
	"github.com/hvubui/cinebook/internal/domain"
)

func (app *Application) GetShowtimeSeatsHandler(w http.ResponseWriter, r *http.Request) {
	showtimeId, err := readIntParam(r, "showtimeID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	showtime, err := app.showtimeRepo.GetByID(r.Context(), showtimeId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toSeatMapResponse(showtime), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toSeatMapResponse(showtime *domain.Showtime) api.SeatMapResponse {
	seats := make([]api.SeatResponse, 0, len(showtime.SeatMap))

	for _, seat := range showtime.SeatMap {
		seats = append(seats, api.SeatResponse{
			Code:   seat.Code,
			Row:    seat.Row,
			Col:    seat.Col,
			Type:   string(seat.Type),
			Status: string(seat.Status),
			Price:  seat.Price,
		})
	}

	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Col < seats[j].Col
	})

	return api.SeatMapResponse{
		ShowtimeId:     showtime.ID,
		MovieTitle:     showtime.MovieTitle,
		CinemaName:     showtime.CinemaName,
		RoomName:       showtime.RoomName,
		StartTime:      showtime.StartTime,
		BasePrice:      showtime.BasePrice,
		TotalSeats:     showtime.TotalSeats,
		AvailableSeats: showtime.AvailableSeats,
		Seats:          seats,
	}
}

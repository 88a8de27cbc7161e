package app

import (
	"errors"
	"net/http"

	"github.com/hvubui/cinebook/api"
	"github.com/hvubui/cinebook/internal/domain"
)

func (app *Application) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	user, err := app.userRepo.GetByID(r.Context(), userId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserResponse{
		Id:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		CurrentPoints: user.CurrentPoints,
		TotalSpending: user.TotalSpending,
		Rank:          string(user.Rank),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

package admin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frsworks/frs-sync/internal/api/common"
	"github.com/frsworks/frs-sync/internal/person"
	"github.com/frsworks/frs-sync/internal/users"
)

// userEvent is the body of the user event endpoints
type userEvent struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// userRegistered handles POST /api/v1/users/registered
func (routes *Routes) userRegistered(w http.ResponseWriter, r *http.Request) {
	routes.handleUserEvent(w, r, routes.deps.Linker.OnUserRegistered)
}

// userLogin handles POST /api/v1/users/login
func (routes *Routes) userLogin(w http.ResponseWriter, r *http.Request) {
	routes.handleUserEvent(w, r, routes.deps.Linker.OnUserLogin)
}

func (*Routes) handleUserEvent(
	w http.ResponseWriter,
	r *http.Request,
	link func(context.Context, person.User) (*users.LinkResult, error),
) {
	var body userEvent
	if status, err := common.DecodeJSONBody(w, r, &body); err != nil {
		common.WriteErrorResponse(w, err.Error(), status)
		return
	}

	result, err := link(r.Context(), person.User{ID: body.ID, Email: body.Email})
	if err != nil {
		if errors.Is(err, users.ErrInvalidUser) {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to link user", "userID", body.ID, "error", err)
		common.WriteErrorResponse(w, "failed to link user", http.StatusInternalServerError)
		return
	}

	common.WriteJSONResponse(w, struct {
		Success bool `json:"success"`
		*users.LinkResult
	}{Success: true, LinkResult: result}, http.StatusOK)
}

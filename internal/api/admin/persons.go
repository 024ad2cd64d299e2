package admin

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/frsworks/frs-sync/internal/api/common"
	"github.com/frsworks/frs-sync/internal/person"
)

// LinkedUser identifies the account linked to a person
type LinkedUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// PersonSyncInfo describes where a person record came from
type PersonSyncInfo struct {
	ID         uuid.UUID     `json:"id"`
	Title      string        `json:"title"`
	Status     person.Status `json:"status"`
	Email      string        `json:"email"`
	Synced     bool          `json:"synced"`
	AgentID    string        `json:"agent_id,omitempty"`
	AgentUUID  string        `json:"agent_uuid,omitempty"`
	LinkedUser *LinkedUser   `json:"linked_user,omitempty"`
	DeletedAt  *time.Time    `json:"deleted_at,omitempty"`
	UpdatedAt  time.Time     `json:"updated_at"`
	ViewURL    string        `json:"view_url,omitempty"`
}

// getPerson handles GET /api/v1/persons/{personID}
func (routes *Routes) getPerson(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetUUIDParam(r, "personID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := routes.deps.People.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, person.ErrNotFound) {
			common.WriteErrorResponse(w, "person not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to load person", "id", id, "error", err)
		common.WriteErrorResponse(w, "failed to load person", http.StatusInternalServerError)
		return
	}

	info := PersonSyncInfo{
		ID:        p.ID,
		Title:     p.Title,
		Status:    p.Status,
		Email:     p.Fields.Email,
		Synced:    p.AgentID != "",
		AgentID:   p.AgentID,
		AgentUUID: p.AgentUUID,
		DeletedAt: p.DeletedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if info.Synced {
		info.ViewURL = routes.deps.FRSBaseURL
	}

	if p.LinkedUserID != "" {
		info.LinkedUser = &LinkedUser{ID: p.LinkedUserID}
		user, err := routes.deps.People.GetUser(r.Context(), p.LinkedUserID)
		switch {
		case err == nil:
			info.LinkedUser.Email = user.Email
		case !errors.Is(err, person.ErrNotFound):
			slog.Warn("Failed to load linked user", "userID", p.LinkedUserID, "error", err)
		}
	}

	common.WriteJSONResponse(w, info, http.StatusOK)
}

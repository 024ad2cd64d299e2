package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/frsworks/frs-sync/internal/api/common"
	"github.com/frsworks/frs-sync/internal/settings"
)

// neverSynced is shown when no sync has completed yet
const neverSynced = "Never"

// StatusResponse summarises the directory and the sync configuration
type StatusResponse struct {
	Success          bool       `json:"success"`
	TotalPeople      int        `json:"total_people"`
	LinkedUsers      int        `json:"linked_users"`
	LastSyncTime     *time.Time `json:"last_sync_time"`
	LastSync         string     `json:"last_sync"`
	LastSyncRelative string     `json:"last_sync_relative,omitempty"`
	AutoSync         bool       `json:"auto_sync"`
	WebhookID        string     `json:"webhook_id,omitempty"`

	// WebhookSecretConfigured never exposes the secret itself
	WebhookSecretConfigured bool `json:"webhook_secret_configured"`

	LastRun *settings.RunStatus `json:"last_run,omitempty"`
}

// getStatus handles GET /api/v1/status
func (routes *Routes) getStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := routes.deps.People.Stats(r.Context())
	if err != nil {
		slog.Error("Failed to count people", "error", err)
		common.WriteErrorResponse(w, "failed to read directory status", http.StatusInternalServerError)
		return
	}

	st, err := routes.deps.Settings.Load(r.Context())
	if err != nil {
		slog.Error("Failed to load settings", "error", err)
		common.WriteErrorResponse(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	resp := StatusResponse{
		Success:                 true,
		TotalPeople:             stats.TotalPeople,
		LinkedUsers:             stats.LinkedUsers,
		LastSync:                neverSynced,
		AutoSync:                st.AutoSync,
		WebhookID:               st.WebhookID,
		WebhookSecretConfigured: st.WebhookSecret != "",
		LastRun:                 st.LastRun,
	}
	if st.LastSyncTime != nil {
		resp.LastSyncTime = st.LastSyncTime
		resp.LastSync = st.LastSyncTime.Format(time.DateTime)
		resp.LastSyncRelative = humanize.RelTime(*st.LastSyncTime, routes.deps.Now(), "ago", "from now")
	}

	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// Package admin provides the authenticated administrative endpoints: sync
// control, status, webhook registration and user linking.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/frsworks/frs-sync/internal/api/common"
	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/httpclient"
	"github.com/frsworks/frs-sync/internal/person"
	"github.com/frsworks/frs-sync/internal/settings"
	pkgsync "github.com/frsworks/frs-sync/internal/sync"
	"github.com/frsworks/frs-sync/internal/sync/state"
	"github.com/frsworks/frs-sync/internal/users"
	"github.com/frsworks/frs-sync/internal/webhook"
)

// msgCredentialsRequired is returned when the API base URL or token is missing
const msgCredentialsRequired = "API URL and Token are required"

//go:generate mockgen -destination=mocks/mock_admin.go -package=mocks -source=routes.go WebhookRegistrar,UserLinker

// WebhookRegistrar registers the receiver with the remote API
type WebhookRegistrar interface {
	Setup(ctx context.Context) (*webhook.Registration, error)
}

// UserLinker handles user account events forwarded by the host platform
type UserLinker interface {
	OnUserRegistered(ctx context.Context, user person.User) (*users.LinkResult, error)
	OnUserLogin(ctx context.Context, user person.User) (*users.LinkResult, error)
}

// Dependencies are the collaborators of the admin routes
type Dependencies struct {
	Client    frs.Client
	Manager   pkgsync.Manager
	Settings  settings.Store
	People    person.Store
	Registrar WebhookRegistrar
	Linker    UserLinker

	// FRSBaseURL is linked from person sync info
	FRSBaseURL string

	// Now defaults to time.Now
	Now func() time.Time
}

// Routes handles admin requests
type Routes struct {
	deps Dependencies
}

// NewRoutes creates admin routes
func NewRoutes(deps Dependencies) *Routes {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Routes{deps: deps}
}

// Router creates the admin router. Mount it behind the auth middleware.
func Router(deps Dependencies) http.Handler {
	routes := NewRoutes(deps)

	r := chi.NewRouter()

	r.Post("/connection/test", routes.testConnection)
	r.Get("/status", routes.getStatus)

	r.Route("/sync", func(r chi.Router) {
		r.Post("/batch", routes.syncBatch)
		r.Post("/full", routes.syncFull)
	})

	r.Post("/webhook/setup", routes.setupWebhook)
	r.Get("/persons/{personID}", routes.getPerson)

	r.Route("/users", func(r chi.Router) {
		r.Post("/registered", routes.userRegistered)
		r.Post("/login", routes.userLogin)
	})

	r.Put("/settings/auto-sync", routes.setAutoSync)

	return r
}

// MessageResponse is a plain success response
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// testConnection handles POST /api/v1/connection/test
func (routes *Routes) testConnection(w http.ResponseWriter, r *http.Request) {
	err := routes.deps.Client.TestConnection(r.Context())
	if err == nil {
		common.WriteJSONResponse(w, MessageResponse{Success: true, Message: "Connected successfully"}, http.StatusOK)
		return
	}

	slog.Warn("Connection test failed", "error", err)
	switch {
	case errors.Is(err, frs.ErrNotConfigured):
		common.WriteErrorResponse(w, msgCredentialsRequired, http.StatusBadRequest)
	case httpclient.StatusCode(err) != 0:
		common.WriteErrorResponse(w, fmt.Sprintf("HTTP %d", httpclient.StatusCode(err)), http.StatusBadGateway)
	default:
		common.WriteErrorResponse(w, err.Error(), http.StatusBadGateway)
	}
}

// batchRequest is the body of POST /api/v1/sync/batch
type batchRequest struct {
	SessionID string `json:"session_id"`
	Offset    int    `json:"offset"`
	BatchSize int    `json:"batch_size"`
	IsInitial bool   `json:"is_initial"`
}

// BatchResponse reports the progress of an incremental sync
type BatchResponse struct {
	Success bool `json:"success"`
	*pkgsync.BatchResult
}

// syncBatch handles POST /api/v1/sync/batch
func (routes *Routes) syncBatch(w http.ResponseWriter, r *http.Request) {
	var body batchRequest
	if status, err := common.DecodeJSONBody(w, r, &body); err != nil {
		common.WriteErrorResponse(w, err.Error(), status)
		return
	}

	req := pkgsync.BatchRequest{
		Offset:    body.Offset,
		BatchSize: body.BatchSize,
		IsInitial: body.IsInitial,
	}
	if body.SessionID != "" {
		id, err := uuid.Parse(body.SessionID)
		if err != nil {
			common.WriteErrorResponse(w, "session_id must be a UUID", http.StatusBadRequest)
			return
		}
		req.SessionID = id
	}

	result, err := routes.deps.Manager.SyncBatch(r.Context(), req)
	if err != nil {
		writeSyncError(w, err)
		return
	}

	common.WriteJSONResponse(w, BatchResponse{Success: true, BatchResult: result}, http.StatusOK)
}

// FullSyncResponse is the outcome of a full sync
type FullSyncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Total   int    `json:"total"`
	Synced  int    `json:"synced"`
	Errors  int    `json:"errors"`
}

// syncFull handles POST /api/v1/sync/full
func (routes *Routes) syncFull(w http.ResponseWriter, r *http.Request) {
	result, err := routes.deps.Manager.PerformFullSync(r.Context())
	if err != nil {
		writeSyncError(w, err)
		return
	}

	common.WriteJSONResponse(w, FullSyncResponse{
		Success: true,
		Message: result.Message,
		Total:   result.Total,
		Synced:  result.Synced,
		Errors:  result.Errors,
	}, http.StatusOK)
}

func writeSyncError(w http.ResponseWriter, err error) {
	var syncErr *pkgsync.Error

	switch {
	case errors.Is(err, pkgsync.ErrSessionRequired), errors.Is(err, pkgsync.ErrInvalidOffset),
		errors.Is(err, pkgsync.ErrOffsetOutOfRange):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, state.ErrSessionNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, frs.ErrNotConfigured):
		common.WriteErrorResponse(w, msgCredentialsRequired, http.StatusBadRequest)
	case errors.As(err, &syncErr) && syncErr.Reason == pkgsync.ReasonAlreadyInProgress:
		common.WriteErrorResponse(w, syncErr.Message, http.StatusConflict)
	case errors.As(err, &syncErr) && syncErr.Reason == pkgsync.ReasonSessionFailed:
		slog.Error("Sync session failure", "error", syncErr.Err)
		common.WriteErrorResponse(w, syncErr.Message, http.StatusInternalServerError)
	case errors.As(err, &syncErr):
		common.WriteErrorResponse(w, syncErr.Message, http.StatusBadGateway)
	default:
		slog.Error("Sync failed", "error", err)
		common.WriteErrorResponse(w, "sync failed", http.StatusInternalServerError)
	}
}

// setupWebhook handles POST /api/v1/webhook/setup
func (routes *Routes) setupWebhook(w http.ResponseWriter, r *http.Request) {
	reg, err := routes.deps.Registrar.Setup(r.Context())
	if err != nil {
		slog.Error("Webhook setup failed", "error", err)
		switch {
		case errors.Is(err, webhook.ErrPublicURLRequired):
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, frs.ErrNotConfigured):
			common.WriteErrorResponse(w, msgCredentialsRequired, http.StatusBadRequest)
		default:
			common.WriteErrorResponse(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	common.WriteJSONResponse(w, struct {
		Success bool `json:"success"`
		*webhook.Registration
	}{Success: true, Registration: reg}, http.StatusOK)
}

// setAutoSyncRequest is the body of PUT /api/v1/settings/auto-sync
type setAutoSyncRequest struct {
	Enabled *bool `json:"enabled"`
}

// setAutoSync handles PUT /api/v1/settings/auto-sync
func (routes *Routes) setAutoSync(w http.ResponseWriter, r *http.Request) {
	var body setAutoSyncRequest
	if status, err := common.DecodeJSONBody(w, r, &body); err != nil {
		common.WriteErrorResponse(w, err.Error(), status)
		return
	}
	if body.Enabled == nil {
		common.WriteErrorResponse(w, "enabled is required", http.StatusBadRequest)
		return
	}

	st, err := routes.deps.Settings.Update(r.Context(), func(s *settings.Settings) error {
		s.AutoSync = *body.Enabled
		return nil
	})
	if err != nil {
		slog.Error("Failed to update auto-sync", "error", err)
		common.WriteErrorResponse(w, "failed to update settings", http.StatusInternalServerError)
		return
	}

	slog.Info("Auto-sync updated", "enabled", st.AutoSync)
	common.WriteJSONResponse(w, map[string]any{"success": true, "auto_sync": st.AutoSync}, http.StatusOK)
}

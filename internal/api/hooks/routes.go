// Package hooks exposes the webhook receiver over HTTP.
package hooks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/frsworks/frs-sync/internal/api/common"
	"github.com/frsworks/frs-sync/internal/webhook"
)

// CompatPath is the receiver path used by remote systems configured against the legacy site
const CompatPath = "/wp-json/frs/v1/webhook"

//go:generate mockgen -destination=mocks/mock_receiver.go -package=mocks -source=routes.go Receiver

// Receiver handles a verified webhook delivery
type Receiver interface {
	Handle(ctx context.Context, body []byte, signature string) (*webhook.Ack, error)
}

// Routes serves webhook deliveries
type Routes struct {
	receiver Receiver
}

// NewRoutes creates webhook routes backed by receiver
func NewRoutes(receiver Receiver) *Routes {
	return &Routes{receiver: receiver}
}

// Router creates a router serving the receiver on path and on CompatPath
func Router(receiver Receiver, path string) http.Handler {
	r := chi.NewRouter()
	Register(r, receiver, path)
	return r
}

// Register adds the receiver routes to r
func Register(r chi.Router, receiver Receiver, path string) {
	routes := NewRoutes(receiver)

	r.Post(path, routes.receive)
	if path != CompatPath {
		r.Post(CompatPath, routes.receive)
	}
}

func (routes *Routes) receive(w http.ResponseWriter, r *http.Request) {
	body, status, err := common.ReadBody(w, r)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), status)
		return
	}

	ack, err := routes.receiver.Handle(r.Context(), body, r.Header.Get(webhook.SignatureHeader))
	switch {
	case err == nil:
		common.WriteJSONResponse(w, ack, http.StatusOK)
	case errors.Is(err, webhook.ErrInvalidSignature):
		common.WriteErrorResponse(w, "Invalid signature", http.StatusUnauthorized)
	case errors.Is(err, webhook.ErrInvalidPayload):
		common.WriteErrorResponse(w, "Invalid webhook payload", http.StatusBadRequest)
	default:
		slog.Error("Webhook handling failed", "error", err)
		common.WriteErrorResponse(w, "Failed to process webhook", http.StatusInternalServerError)
	}
}

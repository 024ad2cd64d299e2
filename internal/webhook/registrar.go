package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/settings"
)

// ErrPublicURLRequired is returned when the service has no public URL to register
var ErrPublicURLRequired = errors.New("webhook.publicURL is required to register a webhook")

// RegisteredEvents are the events requested on registration
var RegisteredEvents = []string{EventAgentCreated, EventAgentUpdated}

// Registration is the outcome of a successful Setup
type Registration struct {
	WebhookID string `json:"webhook_id,omitempty"`
	URL       string `json:"url"`
	Message   string `json:"message"`
}

// Registrar registers this service's receiver with the FRS API
type Registrar struct {
	client    frs.Client
	settings  settings.Store
	siteName  string
	publicURL string
	path      string
}

// NewRegistrar creates a registrar. publicURL is the externally reachable
// root of this service and path the receiver path below it.
func NewRegistrar(client frs.Client, settingsStore settings.Store, siteName, publicURL, path string) *Registrar {
	return &Registrar{
		client:    client,
		settings:  settingsStore,
		siteName:  siteName,
		publicURL: publicURL,
		path:      path,
	}
}

// Setup registers the receiver URL and stores the returned id and secret
func (r *Registrar) Setup(ctx context.Context) (*Registration, error) {
	webhookURL, err := URL(r.publicURL, r.path)
	if err != nil {
		return nil, err
	}

	u, _ := url.Parse(webhookURL)
	creds, err := r.client.RegisterWebhook(ctx, frs.WebhookRegistration{
		Name:   fmt.Sprintf("%s - Loan Officer Sync (%s)", r.siteName, u.Host),
		URL:    webhookURL,
		Events: RegisteredEvents,
		Active: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup webhook: %w", err)
	}

	reg := &Registration{URL: webhookURL}
	if creds.WebhookID == "" {
		reg.Message = "Webhook setup successfully. URL: " + webhookURL
		slog.Info("Webhook registered without id", "url", webhookURL)
		return reg, nil
	}

	_, err = r.settings.Update(ctx, func(st *settings.Settings) error {
		st.WebhookID = creds.WebhookID
		st.WebhookSecret = creds.Secret
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store webhook credentials: %w", err)
	}

	reg.WebhookID = creds.WebhookID
	reg.Message = fmt.Sprintf("Webhook setup successfully. ID: %s, URL: %s", creds.WebhookID, webhookURL)
	slog.Info("Webhook registered", "webhookID", creds.WebhookID, "url", webhookURL, "hasSecret", creds.Secret != "")
	return reg, nil
}

// URL joins publicURL and path. Plain http is upgraded to https except for
// localhost and 127.0.0.1.
func URL(publicURL, path string) (string, error) {
	if strings.TrimSpace(publicURL) == "" {
		return "", ErrPublicURLRequired
	}

	u, err := url.Parse(strings.TrimSpace(publicURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid webhook public URL %q", publicURL)
	}

	host := u.Hostname()
	if u.Scheme == "http" && host != "localhost" && host != "127.0.0.1" {
		u.Scheme = "https"
	}

	if path == "" {
		path = "/webhook"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

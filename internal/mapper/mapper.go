// Package mapper turns remote FRS agents into local person records.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"

	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/media"
	"github.com/frsworks/frs-sync/internal/otel"
	"github.com/frsworks/frs-sync/internal/person"
)

// ErrEmptyEmail is returned for agents without an email, which cannot be matched
var ErrEmptyEmail = errors.New("agent has no email address")

//go:generate mockgen -destination=mocks/mock_mapper.go -package=mocks -source=mapper.go Mapper

// Mapper upserts people from agents
type Mapper interface {
	// SyncAgent creates or updates the person matching the agent's email
	SyncAgent(ctx context.Context, agent *frs.Agent) error
}

// Option configures the mapper
type Option func(*mapper)

// WithImporter enables headshot downloads
func WithImporter(importer media.Importer) Option {
	return func(m *mapper) {
		m.importer = importer
	}
}

// WithTracer sets the tracer used for per-record spans
func WithTracer(tracer trace.Tracer) Option {
	return func(m *mapper) {
		m.tracer = tracer
	}
}

type mapper struct {
	store    person.Store
	importer media.Importer
	tracer   trace.Tracer
}

// New creates a mapper writing into store
func New(store person.Store, opts ...Option) Mapper {
	m := &mapper{store: store}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *mapper) SyncAgent(ctx context.Context, agent *frs.Agent) error {
	ctx, span := otel.StartSpan(ctx, m.tracer, "mapper.SyncAgent",
		trace.WithAttributes(otel.AttrAgentID.String(agent.ID.String())),
	)
	defer span.End()

	email := strings.TrimSpace(agent.Email)
	if email == "" {
		otel.RecordError(span, ErrEmptyEmail)
		return ErrEmptyEmail
	}

	p, err := m.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, person.ErrNotFound):
		p = &person.Person{}
	case err != nil:
		otel.RecordError(span, err)
		return fmt.Errorf("failed to look up person for %s: %w", email, err)
	}
	created := p.ID == uuid.Nil

	p.Title = strings.TrimSpace(agent.FirstName + " " + agent.LastName)
	p.Content = agent.Biography
	p.Status = person.StatusPublish
	p.DeletedAt = nil
	p.Fields.MergeNonEmpty(ToFields(agent))

	if agent.HeadshotURL != "" && m.importer != nil {
		id, err := m.importer.Import(ctx, agent.HeadshotURL)
		if err != nil {
			slog.WarnContext(ctx, "Failed to import headshot, keeping the previous one",
				"agent_id", agent.ID.String(), "url", agent.HeadshotURL, "error", err)
		} else {
			p.Fields.HeadshotID = &id
		}
	}

	if agent.Role != "" {
		p.RoleTerm = agent.Role
	}
	p.AgentID = agent.ID.String()
	p.AgentUUID = agent.UUID

	if err := m.store.Save(ctx, p); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to save person for %s: %w", email, err)
	}

	slog.DebugContext(ctx, "Synced agent",
		"agent_id", p.AgentID, "person_id", p.ID, "created", created)
	return nil
}

// ToFields maps the agent attributes onto person fields. Values the agent
// does not carry are left empty.
func ToFields(agent *frs.Agent) person.Fields {
	return person.Fields{
		Email:         strings.TrimSpace(norm.NFC.String(agent.Email)),
		Phone:         agent.Phone,
		JobTitle:      agent.JobTitle,
		NMLS:          agent.NMLSNumber,
		LicenseNumber: agent.LicenseNumber,
		Biography:     agent.Biography,
		Specialties:   NormalizeList(agent.Specialties),
		Languages:     NormalizeList(agent.Languages),
	}
}

// NormalizeList trims items, applies Unicode NFC and drops empty items
func NormalizeList(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(norm.NFC.String(item))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/frsworks/frs-sync/internal/frs"
	"github.com/frsworks/frs-sync/internal/person"
)

func (r *Receiver) dispatch(ctx context.Context, event string, data gjson.Result) (string, error) {
	switch event {
	case EventAgentCreated, EventAgentUpdated:
		return r.refreshAgent(ctx, data)
	case EventAgentDeleted:
		return r.deleteAgent(ctx, data)
	case EventBulkImportCompleted, EventBulkUpdateCompleted:
		return r.scheduleResync(event)
	case EventTest:
		slog.Info("Webhook test event received")
		return OutcomeIgnored, nil
	default:
		slog.Warn("Unknown webhook event type", "event", event)
		return OutcomeIgnored, nil
	}
}

// refreshAgent re-fetches the full agent, since event payloads may be partial
func (r *Receiver) refreshAgent(ctx context.Context, data gjson.Result) (string, error) {
	if !isLoanOfficer(data) {
		return OutcomeIgnored, nil
	}

	id := agentID(data)
	if id == "" {
		return OutcomeFailed, errors.New("event has no agent id")
	}

	agent, err := r.client.GetAgent(ctx, id)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to fetch agent %s: %w", id, err)
	}
	if err := r.mapper.SyncAgent(ctx, agent); err != nil {
		return OutcomeFailed, fmt.Errorf("failed to sync agent %s: %w", id, err)
	}

	slog.Info("Synced loan officer from webhook", "agentID", id, "email", data.Get("email").String())
	return OutcomeProcessed, nil
}

func (r *Receiver) deleteAgent(ctx context.Context, data gjson.Result) (string, error) {
	if !isLoanOfficer(data) {
		return OutcomeIgnored, nil
	}

	id := agentID(data)
	email := data.Get("email").String()
	p, err := r.people.SoftDelete(ctx, id, email, r.now())
	if errors.Is(err, person.ErrNotFound) {
		slog.Info("No person to delete for agent", "agentID", id, "email", email)
		return OutcomeIgnored, nil
	}
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to delete agent %s: %w", id, err)
	}

	slog.Info("Soft deleted loan officer", "agentID", id, "personID", p.ID)
	return OutcomeProcessed, nil
}

func (r *Receiver) scheduleResync(event string) (string, error) {
	if r.scheduler == nil {
		return OutcomeFailed, errors.New("no scheduler configured")
	}
	armed, err := r.scheduler.ScheduleResync(r.resyncDelay)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to schedule resync: %w", err)
	}
	slog.Info("Bulk operation completed, resync requested", "event", event, "armed", armed)
	return OutcomeProcessed, nil
}

func isLoanOfficer(data gjson.Result) bool {
	return data.Get("role").String() == frs.RoleLoanOfficer
}

// agentID reads agent_id, falling back to id
func agentID(data gjson.Result) string {
	if id := data.Get("agent_id"); id.Exists() && id.String() != "" {
		return id.String()
	}
	return data.Get("id").String()
}

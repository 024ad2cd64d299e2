package settings

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/frsworks/frs-sync/internal/db"
)

func decode(webhookID, secret string, autoSync bool, lastSync pgtype.Timestamptz, lastRun []byte) (*Settings, error) {
	s := &Settings{
		WebhookID:     webhookID,
		WebhookSecret: secret,
		AutoSync:      autoSync,
		LastSyncTime:  db.FromTimestamptz(lastSync),
	}
	if len(lastRun) > 0 {
		var run RunStatus
		if err := json.Unmarshal(lastRun, &run); err != nil {
			return nil, fmt.Errorf("failed to unmarshal last run: %w", err)
		}
		s.LastRun = &run
	}
	return s, nil
}

package worker

// audit_worker.go
// Persists audit-trail entries enqueued by the services. The entry is built
// in the request path (so old/new values are captured at mutation time) but
// written here, off the critical path.

import (
	"context"
	"encoding/json"

	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/repository"

	"github.com/rs/zerolog/log"
)

// AuditJobPayload is the job envelope sent to QueueAudit.
type AuditJobPayload struct {
	TableName string  `json:"table_name"`
	Operation string  `json:"operation"`
	RecordID  string  `json:"record_id"`
	ActorID   string  `json:"actor_id"`
	OldValues *string `json:"old_values,omitempty"`
	NewValues *string `json:"new_values,omitempty"`
}

type AuditWorker struct {
	repo repository.AuditRepository
}

func NewAuditWorker(repo repository.AuditRepository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

func (w *AuditWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload AuditJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("audit_worker: invalid payload")
		return
	}
	if payload.TableName == "" || payload.RecordID == "" {
		log.Warn().Msg("audit_worker: incomplete payload — skipping")
		return
	}

	entry := &model.AuditEntry{
		EntityTable: payload.TableName,
		Operation:   payload.Operation,
		RecordID:    payload.RecordID,
		ActorID:     payload.ActorID,
		OldValues:   payload.OldValues,
		NewValues:   payload.NewValues,
	}
	if err := w.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).
			Str("table", payload.TableName).
			Str("record_id", payload.RecordID).
			Msg("audit_worker: failed to persist entry")
		return
	}
	log.Debug().
		Str("table", payload.TableName).
		Str("op", payload.Operation).
		Str("record_id", payload.RecordID).
		Msg("audit_worker: entry persisted")
}

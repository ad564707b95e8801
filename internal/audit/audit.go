// Package audit persists a trail of catalog and circulation actions.
package audit

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sadiya09-889/final-GCU-library-management-system/internal/models"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionIssue  = "issue"
	ActionReturn = "return"
	ActionRenew  = "renew"
)

// Recorder is the slice of the store the logger needs.
type Recorder interface {
	InsertAuditLog(ctx context.Context, entry models.AuditLog) error
}

type Logger struct {
	Recorder Recorder
}

// Log writes one audit entry. A failed write is logged and swallowed; the
// audit trail never blocks the operation it describes.
func (l Logger) Log(ctx context.Context, performedBy, entity, action string, data any) {
	if l.Recorder == nil {
		return
	}
	entry := models.AuditLog{
		Timestamp:   time.Now().UTC(),
		Entity:      entity,
		Action:      action,
		PerformedBy: performedBy,
		Data:        data,
	}
	if err := l.Recorder.InsertAuditLog(ctx, entry); err != nil {
		log.Warn().Err(err).Str("entity", entity).Str("action", action).Msg("audit write failed")
	}
}

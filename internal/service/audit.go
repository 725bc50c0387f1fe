package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pulsebanking/pulse/internal/domain"
)

// AuditRecorder appends one immutable trail entry per mutating operation.
// Entries written through a transactional ScopedStore commit with the
// mutation they describe; a failed append therefore rolls the mutation back
// and is surfaced as ErrAuditFailed so callers can tell the two outcomes
// apart.
type AuditRecorder struct {
	logger *zap.Logger
}

func NewAuditRecorder(logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{logger: logger}
}

func (r *AuditRecorder) Record(ctx context.Context, store domain.ScopedStore, action, entityName, entityID, details string) error {
	entry, err := domain.NewAuditTrail(store.TenantID(), action, entityName, entityID, details)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuditFailed, err)
	}
	actor := domain.ActorFrom(ctx)
	entry.UserID = actor.ID
	entry.UserName = actor.Name

	if err := store.Audit().Append(ctx, entry); err != nil {
		r.logger.Error("audit append failed",
			zap.String("tenant_id", store.TenantID()),
			zap.String("action", action),
			zap.String("entity", entityName),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", domain.ErrAuditFailed, err)
	}
	return nil
}

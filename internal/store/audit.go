package store

import (
	"context"

	"github.com/pulsebanking/pulse/internal/domain"
)

// AuditStore is tenant-scoped and append-only: there are no update or delete
// paths.
type AuditStore struct {
	db       DB
	tenantID string
}

func (s *AuditStore) Append(ctx context.Context, entry *domain.AuditTrail) error {
	if err := stampTenant(&entry.TenantID, s.tenantID); err != nil {
		return err
	}
	return s.db.QueryRow(ctx,
		`INSERT INTO audit_trail (tenant_id, action, entity_name, entity_id, details, ts, user_id, user_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		entry.TenantID, entry.Action, entry.EntityName, entry.EntityID, entry.Details,
		entry.Timestamp, entry.UserID, entry.UserName,
	).Scan(&entry.ID)
}

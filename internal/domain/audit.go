package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuditTrail is one append-only trail entry: who did what, to which entity,
// in which tenant.
type AuditTrail struct {
	ID         uuid.UUID `json:"id"`
	TenantID   string    `json:"tenant_id"`
	Action     string    `json:"action"`
	EntityName string    `json:"entity_name"`
	EntityID   string    `json:"entity_id"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id,omitempty"`
	UserName   string    `json:"user_name,omitempty"`
}

func NewAuditTrail(tenantID, action, entityName, entityID, details string) (*AuditTrail, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("new audit trail: tenant id cannot be empty")
	}
	if strings.TrimSpace(action) == "" {
		return nil, fmt.Errorf("new audit trail: action cannot be empty")
	}
	if strings.TrimSpace(entityName) == "" {
		return nil, fmt.Errorf("new audit trail: entity name cannot be empty")
	}
	if strings.TrimSpace(entityID) == "" {
		return nil, fmt.Errorf("new audit trail: entity id cannot be empty")
	}
	return &AuditTrail{
		TenantID:   tenantID,
		Action:     action,
		EntityName: entityName,
		EntityID:   entityID,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}, nil
}

// Actor identifies the acting user for audit attribution. It may be empty for
// system-initiated operations.
type Actor struct {
	ID   string
	Name string
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey{}).(Actor)
	return a
}

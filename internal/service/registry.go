package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pulsebanking/pulse/internal/domain"
	"github.com/pulsebanking/pulse/internal/store"
)

// RegistryService fronts the tenant catalog. Lookups are cached in-process
// (the registry is read-mostly); Invalidate makes deactivation visible to new
// requests without a restart.
type RegistryService struct {
	store  domain.TenantStore
	stores domain.ScopedFactory
	audit  *AuditRecorder
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]domain.Tenant
}

func NewRegistryService(ts domain.TenantStore, stores domain.ScopedFactory, audit *AuditRecorder, logger *zap.Logger) *RegistryService {
	return &RegistryService{
		store:  ts,
		stores: stores,
		audit:  audit,
		logger: logger,
		cache:  make(map[string]domain.Tenant),
	}
}

// Resolve turns a raw tenant identifier into a validated TenantContext.
// Missing, unknown and inactive identifiers fail with distinct errors; no
// domain logic may run after any of them.
func (s *RegistryService) Resolve(ctx context.Context, rawID string) (domain.TenantContext, error) {
	id := strings.TrimSpace(rawID)
	if id == "" {
		return domain.TenantContext{}, domain.ErrMissingTenant
	}
	t, err := s.get(ctx, id)
	if err != nil {
		return domain.TenantContext{}, err
	}
	if !t.IsActive {
		return domain.TenantContext{}, fmt.Errorf("%w: %s", domain.ErrTenantInactive, id)
	}
	return domain.NewTenantContext(t), nil
}

// Get returns the registry entry without the active check. Unknown tenants
// are ErrTenantNotFound, never conflated with inactive ones.
func (s *RegistryService) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	return s.get(ctx, id)
}

func (s *RegistryService) Exists(ctx context.Context, id string) (bool, error) {
	return s.store.Exists(ctx, id)
}

func (s *RegistryService) List(ctx context.Context) ([]domain.Tenant, error) {
	return s.store.List(ctx)
}

// Invalidate drops one tenant from the cache. Exposed for external cache
// busting as well as used internally after deactivation.
func (s *RegistryService) Invalidate(id string) {
	s.mu.Lock()
	delete(s.cache, id)
	s.mu.Unlock()
}

// get returns a detached copy: mutating the result never touches the cached
// entry.
func (s *RegistryService) get(ctx context.Context, id string) (*domain.Tenant, error) {
	s.mu.RLock()
	cached, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	t, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTenantNotFound, id)
		}
		return nil, err
	}

	s.mu.Lock()
	s.cache[id] = *t
	s.mu.Unlock()
	return t, nil
}

// RegisterTenantParams carries the onboarding request for a new bank.
type RegisterTenantParams struct {
	BankName         string
	CurrencyCode     string
	TimeZone         string
	TransactionLimit decimal.Decimal
	DeploymentMode   domain.DeploymentMode
	Region           string
	InstanceClass    domain.InstanceClass
	ConnectionTarget string
	AdminEmail       string
}

// Register creates a new tenant. The identifier is derived from the bank name
// (lower-cased, spaces stripped) and is immutable afterwards; a collision is
// rejected with ErrTenantAlreadyExists so registration stays idempotent.
func (s *RegistryService) Register(ctx context.Context, p RegisterTenantParams) (*domain.Tenant, error) {
	name := strings.TrimSpace(p.BankName)
	if name == "" {
		return nil, fmt.Errorf("register tenant: bank name cannot be empty")
	}
	id := DeriveTenantID(name)

	exists, err := s.store.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrTenantAlreadyExists, id)
	}

	t := &domain.Tenant{
		ID:               id,
		Name:             name,
		DeploymentMode:   p.DeploymentMode,
		Region:           p.Region,
		InstanceClass:    p.InstanceClass,
		ConnectionTarget: p.ConnectionTarget,
		CurrencyCode:     strings.ToUpper(strings.TrimSpace(p.CurrencyCode)),
		TransactionLimit: p.TransactionLimit,
		TimeZone:         p.TimeZone,
		IsActive:         true,
		CreatedBy:        p.AdminEmail,
		DataSovereign:    true,
	}
	if t.DeploymentMode == "" {
		t.DeploymentMode = domain.DeploymentShared
	}
	if t.InstanceClass == "" {
		t.InstanceClass = domain.InstanceProduction
	}
	if len(t.CurrencyCode) != 3 {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, p.CurrencyCode)
	}
	if t.TimeZone == "" {
		t.TimeZone = "UTC"
	}
	if t.DeploymentMode == domain.DeploymentShared {
		// The connection target is only meaningful for dedicated deployments.
		t.ConnectionTarget = ""
	}

	if err := s.store.Create(ctx, t); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", domain.ErrTenantAlreadyExists, id)
		}
		return nil, err
	}
	s.logger.Info("tenant registered", zap.String("tenant_id", t.ID), zap.String("name", t.Name))

	// Registration happens outside any tenant transaction, so a failed audit
	// append cannot roll the tenant back; it is still surfaced distinctly.
	scoped, err := s.stores.Scoped(ctx, domain.NewTenantContext(t))
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, scoped, "RegisterTenant", "Tenant", t.ID, "tenant registered by "+p.AdminEmail); err != nil {
		return t, err
	}
	return t, nil
}

// Deactivate blocks all future ledger mutation for the tenant. Tenants are
// never hard-deleted.
func (s *RegistryService) Deactivate(ctx context.Context, tc domain.TenantContext) error {
	actor := domain.ActorFrom(ctx)
	if err := s.store.SetActive(ctx, tc.ID(), false, actor.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", domain.ErrTenantNotFound, tc.ID())
		}
		return err
	}
	s.Invalidate(tc.ID())
	s.logger.Info("tenant deactivated", zap.String("tenant_id", tc.ID()))

	scoped, err := s.stores.Scoped(ctx, tc)
	if err != nil {
		return err
	}
	return s.audit.Record(ctx, scoped, "DeactivateTenant", "Tenant", tc.ID(), "tenant deactivated")
}

// DeriveTenantID maps a bank name to its stable identifier.
func DeriveTenantID(bankName string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(bankName)), " ", "")
}

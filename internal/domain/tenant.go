package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeploymentMode says whether a tenant shares the platform database or runs
// against a dedicated one.
type DeploymentMode string

const (
	DeploymentShared    DeploymentMode = "shared"
	DeploymentDedicated DeploymentMode = "dedicated"
)

type InstanceClass string

const (
	InstanceProduction InstanceClass = "production"
	InstanceDemo       InstanceClass = "demo"
	InstanceTrial      InstanceClass = "trial"
)

// Tenant is one isolated bank sharing the platform. The ID is derived once at
// registration and never changes; tenants are deactivated, never deleted.
type Tenant struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	DeploymentMode   DeploymentMode  `json:"deployment_mode"`
	Region           string          `json:"region"`
	InstanceClass    InstanceClass   `json:"instance_class"`
	ConnectionTarget string          `json:"-"`
	CurrencyCode     string          `json:"currency_code"`
	TransactionLimit decimal.Decimal `json:"transaction_limit"`
	TimeZone         string          `json:"time_zone"`
	IsActive         bool            `json:"is_active"`
	CreatedAt        time.Time       `json:"created_at"`
	CreatedBy        string          `json:"created_by,omitempty"`
	ModifiedAt       *time.Time      `json:"modified_at,omitempty"`
	ModifiedBy       string          `json:"modified_by,omitempty"`
	TrialEndsAt      *time.Time      `json:"trial_ends_at,omitempty"`
	DataSovereign    bool            `json:"data_sovereign"`
}

// TenantContext is the resolved, request-scoped identity of the tenant making
// the current call. It is built exactly once per request by the resolver,
// carries only read access, and is never persisted or shared across requests.
type TenantContext struct {
	id               string
	name             string
	currencyCode     string
	transactionLimit decimal.Decimal
	connectionTarget string
}

func NewTenantContext(t *Tenant) TenantContext {
	return TenantContext{
		id:               t.ID,
		name:             t.Name,
		currencyCode:     t.CurrencyCode,
		transactionLimit: t.TransactionLimit,
		connectionTarget: t.ConnectionTarget,
	}
}

func (c TenantContext) ID() string                        { return c.id }
func (c TenantContext) Name() string                      { return c.name }
func (c TenantContext) CurrencyCode() string              { return c.currencyCode }
func (c TenantContext) TransactionLimit() decimal.Decimal { return c.transactionLimit }
func (c TenantContext) ConnectionTarget() string          { return c.connectionTarget }

package store

import (
	"context"
	"fmt"
	"sync"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects to PostgreSQL and registers the shopspring/decimal codec so
// NUMERIC columns scan directly into decimal.Decimal on every connection.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PoolRouter hands out the connection pool for a tenant's deployment. Shared
// tenants (empty connection target) use the default pool; dedicated tenants
// get a pool for their own target, opened once and cached per target.
type PoolRouter struct {
	def *pgxpool.Pool

	mu    sync.RWMutex
	pools map[string]*pgxpool.Pool
}

func NewPoolRouter(def *pgxpool.Pool) *PoolRouter {
	return &PoolRouter{def: def, pools: make(map[string]*pgxpool.Pool)}
}

func (r *PoolRouter) For(ctx context.Context, target string) (*pgxpool.Pool, error) {
	if target == "" {
		return r.def, nil
	}

	r.mu.RLock()
	pool, ok := r.pools[target]
	r.mu.RUnlock()
	if ok {
		return pool, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if pool, ok = r.pools[target]; ok {
		return pool, nil
	}
	pool, err := NewPool(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("dedicated pool for target: %w", err)
	}
	r.pools[target] = pool
	return pool, nil
}

// Close closes every dedicated pool. The default pool is owned by the caller.
func (r *PoolRouter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for target, pool := range r.pools {
		pool.Close()
		delete(r.pools, target)
	}
}

package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/pulsebanking/pulse/internal/api/handlers"
	mw "github.com/pulsebanking/pulse/internal/api/middleware"
	"github.com/pulsebanking/pulse/internal/config"
	"github.com/pulsebanking/pulse/internal/domain"
	"github.com/pulsebanking/pulse/internal/service"
	"github.com/pulsebanking/pulse/internal/store"
)

// App holds the router plus process metrics.
type App struct {
	Router   *chi.Mux
	Registry *service.RegistryService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	tenantStore := store.NewTenantStore(db)
	scopedFactory := store.NewFactory(store.NewPoolRouter(db))

	// Services
	audit := service.NewAuditRecorder(logger)
	registry := service.NewRegistryService(tenantStore, scopedFactory, audit, logger)
	customerSvc := service.NewCustomerService(scopedFactory, audit, logger)
	accountSvc := service.NewAccountService(scopedFactory, audit, logger)
	ledgerSvc := service.NewLedgerService(scopedFactory, audit, logger)

	// Handlers
	tenantHandler := handlers.NewTenantHandler(registry)
	customerHandler := handlers.NewCustomerHandler(customerSvc)
	accountHandler := handlers.NewAccountHandler(accountSvc, ledgerSvc)
	transactionHandler := handlers.NewTransactionHandler(ledgerSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Registry:  registry,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))
	r.Use(mw.Actor)

	// Health and metrics (no tenant)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	// Every /v1 route runs behind tenant resolution. Registration is the one
	// explicit bypass: that tenant does not exist yet.
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.ResolveTenant(registry,
			mw.Route{Method: http.MethodPost, Path: "/v1/tenants"},
		))

		// Tenants
		r.Post("/tenants", tenantHandler.Register)
		r.Route("/tenants/{id}", func(r chi.Router) {
			r.Get("/", tenantHandler.Get)
			r.Post("/deactivate", tenantHandler.Deactivate)
		})

		// Customers
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", customerHandler.Create)
			r.Get("/", customerHandler.List)
			r.Get("/{id}", customerHandler.GetByID)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", accountHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", accountHandler.GetByID)
				r.Get("/transactions", accountHandler.Transactions)
				r.Post("/deposit", transactionHandler.Deposit)
				r.Post("/withdraw", transactionHandler.Withdraw)
			})
		})

		// Transfers and transaction history
		r.Post("/transfers", transactionHandler.Transfer)
		r.Route("/transactions/{id}", func(r chi.Router) {
			r.Get("/", transactionHandler.GetByID)
			r.Post("/reverse", transactionHandler.Reverse)
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy the domain contracts at compile time.
var (
	_ domain.TenantStore   = (*store.TenantStore)(nil)
	_ domain.ScopedStore   = (*store.Scoped)(nil)
	_ domain.ScopedFactory = (*store.Factory)(nil)
)

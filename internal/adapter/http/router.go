package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/gtservice/gtledger/internal/adapter/http/handler"
	"github.com/gtservice/gtledger/internal/adapter/http/middleware"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
	"github.com/gtservice/gtledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	StockHandler          *handler.StockHandler
	InvoiceHandler        *handler.InvoiceHandler
	AccountingHandler     *handler.AccountingHandler
	CustomerHandler       *handler.CustomerHandler
	JobHandler            *handler.JobHandler
	AuthHandler           *handler.AuthHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	// TokenVerifier enables bearer authentication and role checks when set.
	TokenVerifier    middleware.TokenVerifier
	LoginLimiter     *middleware.RateLimiter
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	CORSAllowedOrigins []string
	Metrics            *metrics.Metrics
	MetricsHandler     http.Handler
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestMeta)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.IdempotencyKeyHeader, "X-Request-ID"},
			ExposedHeaders:   []string{middleware.IdempotencyReplayHeader, "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	authOn := cfg.TokenVerifier != nil
	role := func(min domain.Role) func(http.Handler) http.Handler {
		if !authOn {
			return passthrough
		}
		return middleware.RequireRole(min)
	}
	mechanic := role(domain.RoleMechanic)
	manager := role(domain.RoleManager)
	admin := role(domain.RoleAdmin)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		login := http.Handler(http.HandlerFunc(cfg.AuthHandler.Login))
		if cfg.LoginLimiter != nil {
			login = cfg.LoginLimiter.Limit(login)
		}
		r.Method(http.MethodPost, "/auth/login", login)

		r.Group(func(r chi.Router) {
			if authOn {
				r.Use(middleware.AuthMiddleware(cfg.TokenVerifier))
			}
			// Idempotency runs after authentication so keys are scoped per user
			if cfg.IdempotencyStore != nil {
				r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
			}

			// Auth
			r.Get("/auth/me", cfg.AuthHandler.GetCurrentUser)
			r.Post("/auth/totp/enroll", cfg.AuthHandler.EnrollTOTP)
			r.Post("/auth/totp/confirm", cfg.AuthHandler.ConfirmTOTP)

			// Users
			r.Route("/users", func(r chi.Router) {
				r.Use(admin)
				r.Post("/", cfg.AuthHandler.CreateUser)
				r.Get("/{id}", cfg.AuthHandler.GetUser)
				r.Post("/{id}/active", cfg.AuthHandler.SetUserActive)
			})

			// Parts
			r.Route("/parts", func(r chi.Router) {
				r.With(mechanic).Post("/", cfg.StockHandler.CreatePart)
				r.Get("/", cfg.StockHandler.ListParts)
				r.Get("/{id}", cfg.StockHandler.GetPart)
				r.Get("/{id}/movements", cfg.StockHandler.ListMovements)
				r.With(mechanic).Post("/{id}/movements", cfg.StockHandler.RecordMovement)
			})

			// Stock
			r.Route("/stock", func(r chi.Router) {
				r.With(mechanic).Post("/movements", cfg.StockHandler.RecordMovement)
				r.Get("/movements/{number}", cfg.StockHandler.GetMovement)
				r.Get("/reconciliation", cfg.ReconciliationHandler.Reconcile)
			})

			// Alerts
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", cfg.StockHandler.ListAlerts)
				r.With(mechanic).Post("/{id}/ack", cfg.StockHandler.AcknowledgeAlert)
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.With(mechanic).Post("/", cfg.CustomerHandler.Create)
				r.Get("/", cfg.CustomerHandler.List)
				r.Get("/{id}", cfg.CustomerHandler.Get)
				r.Get("/{id}/vehicles", cfg.CustomerHandler.ListVehicles)
				r.With(mechanic).Post("/{id}/vehicles", cfg.CustomerHandler.AddVehicle)
			})

			// Jobs
			r.Route("/jobs", func(r chi.Router) {
				r.With(mechanic).Post("/", cfg.JobHandler.Create)
				r.Get("/", cfg.JobHandler.List)
				r.Get("/board", cfg.JobHandler.Board)
				r.Get("/{id}", cfg.JobHandler.Get)
				r.With(mechanic).Post("/{id}/status", cfg.JobHandler.Transition)
				r.With(mechanic).Post("/{id}/parts", cfg.JobHandler.ConsumePart)
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.With(manager).Post("/", cfg.InvoiceHandler.Create)
				r.Get("/", cfg.InvoiceHandler.List)
				r.Get("/{id}", cfg.InvoiceHandler.Get)
				r.With(manager).Post("/{id}/cancel", cfg.InvoiceHandler.Cancel)
				r.Get("/{id}/payments", cfg.InvoiceHandler.ListPayments)
				r.With(manager).Post("/{id}/payments", cfg.InvoiceHandler.RecordPayment)
			})

			// Accounting
			r.With(manager).Post("/expenses", cfg.AccountingHandler.RecordExpense)
			r.Route("/accounting", func(r chi.Router) {
				r.Use(manager)
				r.Get("/records", cfg.AccountingHandler.ListRecords)
				r.Get("/summary", cfg.AccountingHandler.Summary)
			})
		})
	})

	return r
}

func passthrough(next http.Handler) http.Handler { return next }

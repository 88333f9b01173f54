package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adicipta/procure-api/internal/auth"
	"github.com/adicipta/procure-api/internal/config"
	"github.com/adicipta/procure-api/internal/database"
	"github.com/adicipta/procure-api/internal/domain"
	"github.com/adicipta/procure-api/internal/erp"
	"github.com/adicipta/procure-api/internal/http/handler"
	"github.com/adicipta/procure-api/internal/http/middleware"
)

// Router wires middleware and handlers into the HTTP surface
type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	erpClient      *erp.Client
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	purchaseOrders *handler.PurchaseOrderHandler
	payments       *handler.PaymentHandler
	salesOrders    *handler.SalesOrderHandler
	sequences      *handler.SequenceHandler
	audit          *handler.AuditHandler
}

// NewRouter creates a router with all its dependencies
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	purchaseOrders *handler.PurchaseOrderHandler,
	payments *handler.PaymentHandler,
	salesOrders *handler.SalesOrderHandler,
	sequences *handler.SequenceHandler,
	audit *handler.AuditHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		erpClient:      erpClient,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		purchaseOrders: purchaseOrders,
		payments:       payments,
		salesOrders:    salesOrders,
		sequences:      sequences,
		audit:          audit,
	}
}

// Setup builds the chi mux
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recovery(rt.logger),
		middleware.Logging(rt.logger),
		middleware.SecurityHeaders,
		middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger),
		rt.rateLimiter.Limit,
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/health/db", rt.healthDB)
	r.Get("/health/ready", rt.healthReady)

	if rt.cfg.App.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			r.Route("/purchase-orders", func(r chi.Router) {
				r.Get("/", rt.purchaseOrders.List)
				r.Get("/{poCode}", rt.purchaseOrders.Get)
				r.Get("/{poCode}/audit", rt.purchaseOrders.AuditTrail)
				r.Get("/{poCode}/payments", rt.payments.ListByPurchaseOrder)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(
						domain.RolePurchasing, domain.RoleSupervisor,
						domain.RoleFinance, domain.RoleAdmin, domain.RoleAPIService))
					r.Post("/", rt.purchaseOrders.Create)
					r.Post("/{poCode}/transition", rt.purchaseOrders.Transition)
					r.Delete("/{poCode}", rt.purchaseOrders.Cancel)
				})

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(
						domain.RoleFinance, domain.RoleAdmin, domain.RoleAPIService))
					r.Post("/{poCode}/payments", rt.payments.Record)
				})
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/{paymentCode}", rt.payments.Get)
			})

			r.Route("/sales-orders", func(r chi.Router) {
				r.Get("/", rt.salesOrders.List)
				r.Get("/{soCode}", rt.salesOrders.Get)
				r.Get("/{soCode}/lines/{itemCode}/{productCode}/remaining", rt.salesOrders.Remaining)
			})

			r.Route("/sequences", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleAPIService))
				r.Post("/allocate", rt.sequences.Allocate)
			})

			r.Route("/audit-logs", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireRole(domain.RoleAdmin, domain.RoleFinance))
				r.Get("/", rt.audit.List)
				r.Get("/stats", rt.audit.Stats)
			})
		})
	})

	return r
}

func (rt *Router) healthDB(w http.ResponseWriter, r *http.Request) {
	stats, err := database.HealthCheckWithStats(rt.db)
	if err != nil {
		respondHealth(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondHealth(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"stats":  stats,
	})
}

func (rt *Router) healthReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"database": "ok"}
	status := http.StatusOK

	if err := database.HealthCheck(rt.db); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if rt.erpClient.IsEnabled() {
		if err := rt.erpClient.HealthCheck(r.Context()); err != nil {
			checks["erp"] = err.Error()
		} else {
			checks["erp"] = "ok"
		}
	}

	readiness := "ready"
	if status != http.StatusOK {
		readiness = "not ready"
	}
	respondHealth(w, status, map[string]interface{}{
		"status": readiness,
		"checks": checks,
	})
}

func respondHealth(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

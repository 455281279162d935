package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/propcore/backend/internal/infrastructure/auth"
	"github.com/propcore/backend/internal/infrastructure/config"
	"github.com/propcore/backend/internal/infrastructure/logger"
	"github.com/propcore/backend/internal/interfaces/http/handler"
	"github.com/propcore/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// AdminRole is required for the outbox administration routes
const AdminRole = "admin"

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	System      *handler.SystemHandler
	Property    *handler.PropertyHandler
	Unit        *handler.UnitHandler
	Tenant      *handler.TenantHandler
	Payment     *handler.PaymentHandler
	Maintenance *handler.MaintenanceHandler
	Expense     *handler.ExpenseHandler
	Activity    *handler.ActivityHandler
	Outbox      *handler.OutboxHandler
}

// Config configures the engine's middleware chain
type Config struct {
	HTTP     config.HTTPConfig
	Verifier *auth.Verifier
	Tracing  middleware.TracingConfig
	Logger   *zap.Logger
	// RateLimiter is optional; nil disables rate limiting
	RateLimiter *middleware.RateLimiter
}

// NewEngine builds the gin engine with the full middleware chain and every route
func NewEngine(cfg Config, h Handlers) (*gin.Engine, error) {
	middleware.SetupValidator()

	engine := gin.New()
	var proxies []string
	if len(cfg.HTTP.TrustedProxies) > 0 {
		proxies = cfg.HTTP.TrustedProxies
	}
	if err := engine.SetTrustedProxies(proxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanErrorMarker(),
	)
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	api := []gin.HandlerFunc{
		middleware.JWTAuth(cfg.Verifier, cfg.Logger),
		middleware.TracingAttributeInjector(),
	}
	if cfg.RateLimiter != nil {
		api = append(api, middleware.RateLimit(cfg.RateLimiter))
	}

	r := NewRouter(engine, WithAPIMiddleware(api...))
	for _, group := range domainGroups(h) {
		r.Register(group)
	}
	r.Setup()
	return engine, nil
}

func domainGroups(h Handlers) []*DomainGroup {
	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo)

	properties := NewDomainGroup("properties", "/properties").
		POST("", h.Property.Create).
		GET("", h.Property.List).
		GET("/:id", h.Property.GetByID).
		GET("/:id/cash-flow", h.Property.CashFlow).
		POST("/:id/units", h.Property.AddUnits).
		POST("/:id/archive", h.Property.Archive)

	units := NewDomainGroup("units", "/units").
		GET("/:id", h.Unit.GetByID).
		PATCH("/:id/status", h.Unit.ChangeStatus).
		PATCH("/:id/rent", h.Unit.ChangeRent).
		DELETE("/:id", h.Unit.Remove).
		GET("/:id/history", h.Unit.History)

	tenants := NewDomainGroup("tenants", "/tenants").
		POST("", h.Tenant.Create).
		GET("", h.Tenant.List).
		GET("/:id", h.Tenant.GetByID).
		POST("/:id/transfer", h.Tenant.Transfer).
		PATCH("/:id/status", h.Tenant.ChangeStatus).
		PATCH("/:id/rent", h.Tenant.ChangeRent).
		POST("/:id/archive", h.Tenant.Archive).
		GET("/:id/movements", h.Tenant.Movements).
		GET("/:id/payments", h.Tenant.Payments)

	payments := NewDomainGroup("payments", "/payments").
		POST("", h.Payment.Record).
		GET("/:id", h.Payment.GetByID).
		PATCH("/:id/status", h.Payment.ChangeStatus)

	batches := NewDomainGroup("payment-batches", "/payment-batches").
		POST("", h.Payment.CreateBatch).
		GET("/:id", h.Payment.GetBatch).
		POST("/:id/process", h.Payment.ProcessBatch)

	maintenance := NewDomainGroup("maintenance", "/maintenance").
		POST("", h.Maintenance.Create).
		GET("", h.Maintenance.ListOpen).
		GET("/:id", h.Maintenance.GetByID).
		POST("/:id/complete", h.Maintenance.Complete).
		POST("/:id/cancel", h.Maintenance.Cancel)

	expenses := NewDomainGroup("expenses", "/expenses").
		POST("", h.Expense.Record).
		GET("/:id", h.Expense.GetByID).
		POST("/:id/void", h.Expense.Void)

	audit := NewDomainGroup("audit", "/audit").
		GET("/:entity_type/:id", h.Activity.AuditLog)

	notifications := NewDomainGroup("notifications", "/notifications").
		GET("", h.Activity.MyNotifications).
		POST("/:id/read", h.Activity.MarkRead)

	recipients := NewDomainGroup("recipients", "/recipients").
		GET("/:recipient_id/notifications", h.Activity.Notifications)

	admin := NewDomainGroup("admin", "/admin").Use(middleware.RequireRole(AdminRole))
	admin.Group("outbox", "/outbox").
		GET("/stats", h.Outbox.Stats).
		GET("/dead", h.Outbox.DeadLetters).
		POST("/retry-all", h.Outbox.RedeliverAll).
		GET("/:id", h.Outbox.Task).
		POST("/:id/retry", h.Outbox.Redeliver)

	return []*DomainGroup{
		system, properties, units, tenants, payments, batches,
		maintenance, expenses, audit, notifications, recipients, admin,
	}
}

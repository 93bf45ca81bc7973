package payments

import (
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// ModuleConfig combines the config interfaces the payments module needs.
type ModuleConfig interface {
	config.CheckoutConfig
	config.PricingConfig
}

// Module is the payments bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	svc     *Service
}

// NewModule creates and initializes the payments module.
func NewModule(client *redis.Client, granter CreditGranter, cfg ModuleConfig, val *validator.Validator, log *logger.Logger) *Module {
	store := NewSessionStore(client, cfg.GetCheckoutSessionTTL())
	svc := NewService(store, granter, cfg, cfg, log)
	return &Module{handler: NewHandler(svc, val), svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "payments"
}

// Service returns the payments service; it implements the leads module's
// PaymentInitiator port.
func (m *Module) Service() *Service {
	return m.svc
}

// RegisterRoutes mounts payment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/payments")
	group.Use(httpkit.RequireRole(httpkit.RoleContractor))
	m.handler.RegisterRoutes(group)

	m.handler.RegisterWebhookRoutes(ctx.V1.Group("/webhooks"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

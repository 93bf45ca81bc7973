// Package contractors provides the contractor bounded context: profiles,
// license review, and the credit ledger.
package contractors

import (
	"leadmarket_backend/internal/contractors/handler"
	"leadmarket_backend/internal/contractors/repository"
	"leadmarket_backend/internal/contractors/service"
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contractors bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the contractors module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contractors"
}

// Service returns the contractor service for wiring by other modules.
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts contractor routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/contractors")
	group.Use(httpkit.RequireRole(httpkit.RoleContractor))
	m.handler.RegisterRoutes(group)

	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/contractors"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

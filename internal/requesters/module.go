// Package requesters provides the requester bounded context.
package requesters

import (
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/requesters/handler"
	"leadmarket_backend/internal/requesters/repository"
	"leadmarket_backend/internal/requesters/service"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the requesters bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
}

// NewModule creates and initializes the requesters module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{handler: handler.New(svc), svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "requesters"
}

// Service returns the requester service for wiring by other modules.
func (m *Module) Service() *service.Service {
	return m.svc
}

// RegisterRoutes mounts requester routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/requesters")
	group.Use(httpkit.RequireRole(httpkit.RoleRequester))
	m.handler.RegisterRoutes(group)

	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/requesters"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

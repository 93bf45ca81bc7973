// Package auth provides the authentication bounded context: registration,
// login, and token refresh.
package auth

import (
	"leadmarket_backend/internal/auth/handler"
	"leadmarket_backend/internal/auth/repository"
	"leadmarket_backend/internal/auth/service"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/platform/config"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the auth module. The registrars create
// the profile rows in the requesters and contractors contexts.
func NewModule(
	pool *pgxpool.Pool,
	requesters service.RequesterRegistrar,
	contractors service.ContractorRegistrar,
	cfg config.AuthServiceConfig,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, requesters, contractors, cfg, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/auth"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

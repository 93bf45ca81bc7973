// Package leads provides the lead distribution bounded context: intake,
// assignment, credit-gated reveal, and the requester handshake.
package leads

import (
	"leadmarket_backend/internal/events"
	apphttp "leadmarket_backend/internal/http"
	"leadmarket_backend/internal/leads/handler"
	"leadmarket_backend/internal/leads/ports"
	"leadmarket_backend/internal/leads/repository"
	"leadmarket_backend/internal/leads/service"
	"leadmarket_backend/platform/logger"
	"leadmarket_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	svc           *service.Service
}

// NewModule creates and initializes the leads module with all its
// dependencies. The contractor directory and credit ledger are ports
// implemented by the contractors context through internal/adapters.
func NewModule(
	pool *pgxpool.Pool,
	contractors ports.ContractorDirectory,
	credits ports.CreditLedger,
	eventBus events.Bus,
	val *validator.Validator,
	cfg service.Config,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, contractors, credits, cfg, log)
	svc.SetEventBus(eventBus)

	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc, val),
		svc:           svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for wiring by other modules.
func (m *Module) Service() *service.Service {
	return m.svc
}

// SetPaymentInitiator wires the checkout provider used when a reveal is
// blocked on credits.
func (m *Module) SetPaymentInitiator(payments ports.PaymentInitiator) {
	m.svc.SetPaymentInitiator(payments)
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public intake accepts anonymous submissions under a strict limiter.
	// An optional bearer token attributes the lead to the requester.
	public := ctx.V1.Group("/leads")
	public.Use(ctx.IntakeRateLimiter.RateLimit(), optionalAuth(ctx.AuthMiddleware))
	m.publicHandler.RegisterRoutes(public)

	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/leads"))
}

// optionalAuth runs the auth middleware only when a token is present, so the
// intake endpoint stays open to anonymous visitors.
func optionalAuth(auth gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		auth(c)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

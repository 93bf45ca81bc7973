package handler

import (
	"net/http"

	"leadmarket_backend/internal/leads/service"
	"leadmarket_backend/internal/leads/transport"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler serves the authenticated lead routes: requester and contractor
// views plus the admin assignment surface.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the authenticated lead routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/my", httpkit.RequireRole(httpkit.RoleRequester), h.ListMine)
	rg.GET("/assigned", httpkit.RequireRole(httpkit.RoleContractor), h.ListAssigned)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/reveal", httpkit.RequireRole(httpkit.RoleContractor), h.Reveal)
	rg.POST("/:id/confirm", httpkit.RequireRole(httpkit.RoleRequester), h.ConfirmContact)
}

// RegisterAdminRoutes mounts the admin assignment routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/unassigned", h.ListUnassigned)
	rg.GET("/:id/suggestions", h.SuggestContractors)
	rg.GET("/:id/timeline", h.Timeline)
	rg.POST("/:id/assign", h.Assign)
	rg.POST("/:id/close", h.Close)
}

func (h *Handler) ListMine(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leads, err := h.svc.ListByRequester(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) ListAssigned(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leads, err := h.svc.ListByContractor(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) GetByID(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	lead, err := h.svc.GetForViewer(c.Request.Context(), leadID, id.UserID(), id.HasRole(httpkit.RoleAdmin))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Reveal(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	resp, err := h.svc.Reveal(c.Request.Context(), leadID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ConfirmContact(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	lead, err := h.svc.ConfirmContact(c.Request.Context(), leadID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) ListUnassigned(c *gin.Context) {
	leads, err := h.svc.ListUnassigned(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) SuggestContractors(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	suggestions, err := h.svc.SuggestContractors(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, suggestions)
}

func (h *Handler) Timeline(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	timeline, err := h.svc.Timeline(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, timeline)
}

func (h *Handler) Assign(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	actorID := id.UserID()

	lead, err := h.svc.Assign(c.Request.Context(), leadID, req.ContractorID, service.AssignOptions{
		Manual:            true,
		BypassEligibility: req.BypassEligibility,
		ActorID:           &actorID,
		Reason:            req.Reason,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Close(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	lead, err := h.svc.Close(c.Request.Context(), leadID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

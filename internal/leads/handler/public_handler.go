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

// PublicHandler serves the anonymous lead intake endpoint. Submissions from
// logged-in requesters are attributed to them; everyone else submits
// anonymously and the lead has no owner until claimed by support.
type PublicHandler struct {
	svc *service.Service
	val *validator.Validator
}

func NewPublicHandler(svc *service.Service, val *validator.Validator) *PublicHandler {
	return &PublicHandler{svc: svc, val: val}
}

// RegisterRoutes mounts the public intake routes. The caller applies the
// intake rate limiter.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
}

func (h *PublicHandler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var requesterID *uuid.UUID
	if id := httpkit.GetIdentity(c); id.IsAuthenticated() && id.HasRole(httpkit.RoleRequester) {
		uid := id.UserID()
		requesterID = &uid
	}

	lead, err := h.svc.Create(c.Request.Context(), requesterID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, lead)
}

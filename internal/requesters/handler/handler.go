package handler

import (
	"net/http"

	"leadmarket_backend/internal/requesters/service"
	"leadmarket_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the requester self-service routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
}

// RegisterAdminRoutes mounts the admin requester routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/verify", h.MarkVerified)
}

func (h *Handler) Me(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	requester, err := h.svc.GetByID(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, requester)
}

func (h *Handler) MarkVerified(c *gin.Context) {
	requesterID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	requester, err := h.svc.MarkVerified(c.Request.Context(), requesterID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, requester)
}

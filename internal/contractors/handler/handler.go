package handler

import (
	"net/http"

	"leadmarket_backend/internal/contractors/service"
	"leadmarket_backend/internal/contractors/transport"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the contractor self-service routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
	rg.GET("/me/credits", h.Credits)
}

// RegisterAdminRoutes mounts the admin contractor routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.POST("/:id/license-review", h.ReviewLicense)
	rg.POST("/:id/verification", h.SetVerified)
}

func (h *Handler) Me(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	contractor, err := h.svc.GetByID(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, contractor)
}

func (h *Handler) Credits(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	balance, err := h.svc.Balance(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, balance)
}

func (h *Handler) List(c *gin.Context) {
	contractors, err := h.svc.List(c.Request.Context(), c.Query("licenseStatus"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, contractors)
}

func (h *Handler) GetByID(c *gin.Context) {
	contractorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	contractor, err := h.svc.GetByID(c.Request.Context(), contractorID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, contractor)
}

func (h *Handler) ReviewLicense(c *gin.Context) {
	contractorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.LicenseReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	contractor, err := h.svc.ReviewLicense(c.Request.Context(), contractorID, req.Decision)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, contractor)
}

func (h *Handler) SetVerified(c *gin.Context) {
	contractorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	contractor, err := h.svc.SetVerified(c.Request.Context(), contractorID, *req.Verified)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, contractor)
}

package handler

import (
	"net/http"

	"leadmarket_backend/internal/auth/service"
	"leadmarket_backend/internal/auth/transport"
	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/validator"

	"github.com/gin-gonic/gin"
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register/requester", h.RegisterRequester)
	rg.POST("/register/contractor", h.RegisterContractor)
	rg.POST("/login", h.Login)
	rg.POST("/refresh", h.Refresh)
	rg.POST("/logout", h.Logout)
}

func (h *Handler) RegisterRequester(c *gin.Context) {
	var req transport.RegisterRequesterRequest
	if !h.bind(c, &req) {
		return
	}

	tokens, err := h.svc.RegisterRequester(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, tokens)
}

func (h *Handler) RegisterContractor(c *gin.Context) {
	var req transport.RegisterContractorRequest
	if !h.bind(c, &req) {
		return
	}

	tokens, err := h.svc.RegisterContractor(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, tokens)
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tokens)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req transport.RefreshRequest
	if !h.bind(c, &req) {
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tokens)
}

func (h *Handler) Logout(c *gin.Context) {
	var req transport.RefreshRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusNoContent, nil)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

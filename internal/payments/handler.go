package payments

import (
	"encoding/json"
	"io"
	"net/http"

	"leadmarket_backend/platform/httpkit"
	"leadmarket_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"

	signatureHeader = "X-Checkout-Signature"
)

type TopUpRequest struct {
	Credits int `json:"credits" validate:"required,min=1,max=100"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

type webhookPayload struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

type Handler struct {
	svc *Service
	val *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the contractor-facing top-up route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout", h.TopUp)
}

// RegisterWebhookRoutes mounts the provider callback. Authenticated by
// signature, not by JWT.
func (h *Handler) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout", h.Webhook)
}

func (h *Handler) TopUp(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	url, err := h.svc.CreateTopUp(c.Request.Context(), id.UserID(), req.Credits)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, CheckoutResponse{CheckoutURL: url})
}

func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if !h.svc.VerifySignature(body, c.GetHeader(signatureHeader)) {
		c.JSON(http.StatusUnauthorized, httpkit.ErrorResponse{
			Error: "invalid webhook signature",
			Code:  CodeInvalidSignature,
		})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if payload.Status != "completed" {
		// Failed or cancelled checkouts need no action; the session expires.
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.svc.CompleteCheckout(c.Request.Context(), payload.SessionID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

package api

import (
	"io"
	"net/http"

	"agama-events/internal/logger"
	"agama-events/internal/payments"
	"agama-events/internal/utils"

	"github.com/gin-gonic/gin"
)

// Stripe signs payloads up to this size; anything bigger is not ours.
const maxPayloadBytes = 65536

type WebhookHandler struct {
	Reconciler *payments.Reconciler
	Logger     *logger.Logger
}

func NewWebhookHandler(reconciler *payments.Reconciler, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{Reconciler: reconciler, Logger: log}
}

// HandleStripeWebhook receives POST /webhooks/stripe.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Failed to read payload", ""))
		return
	}

	werr := h.Reconciler.HandleNotification(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if werr != nil {
		h.Logger.Error("WEBHOOK", werr.Error())
		c.JSON(werr.StatusCode, utils.ErrorResponse(werr.PublicError, ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

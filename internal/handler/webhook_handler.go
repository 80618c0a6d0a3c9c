package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/sparx365/homework-backend/internal/response"
	"github.com/sparx365/homework-backend/internal/service"
)

// WebhookHandler receives Stripe webhook deliveries.
type WebhookHandler struct {
	billingService *service.BillingService
	log            zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(billingService *service.BillingService, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		billingService: billingService,
		log:            log.With().Str("component", "webhook_handler").Logger(),
	}
}

// HandleStripe godoc
// POST /webhooks/stripe
// Verifies the Stripe-Signature header against the raw body and dispatches
// the event. Stripe retries on anything but 2xx, so processing failures
// after a valid signature are surfaced as 500.
func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billingService.HandleWebhookEvent(c.Request.Context(), payload, signature); err != nil {
		if errors.Is(err, service.ErrBadSignature) {
			h.log.Warn().Err(err).Msg("Webhook signature verification failed")
			response.Fail(c, http.StatusBadRequest, response.ErrWebhookSignature)
			return
		}
		h.log.Error().Err(err).Msg("Webhook processing failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

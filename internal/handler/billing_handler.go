package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sparx365/homework-backend/internal/middleware"
	"github.com/sparx365/homework-backend/internal/model"
	"github.com/sparx365/homework-backend/internal/response"
	"github.com/sparx365/homework-backend/internal/service"
	"github.com/sparx365/homework-backend/internal/validator"
)

// BillingHandler handles the Stripe checkout and portal endpoints.
type BillingHandler struct {
	billingService *service.BillingService
	authService    *service.AuthService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(billingService *service.BillingService, authService *service.AuthService) *BillingHandler {
	return &BillingHandler{billingService: billingService, authService: authService}
}

// CreateCheckoutSession godoc
// POST /api/v1/billing/checkout-session
// Starts a premium subscription checkout.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	var req model.CheckoutSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sessionID, err := h.billingService.CreateCheckoutSession(c.Request.Context(), user, req.PaymentMethod)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.CheckoutSessionResponse{SessionID: sessionID})
}

// CreatePortalSession godoc
// POST /api/v1/billing/portal-session
// Opens the Stripe customer portal for subscription management.
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	url, err := h.billingService.CreatePortalSession(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrNoStripeCustomer) {
			response.Fail(c, http.StatusBadRequest, response.ErrNoStripeCustomer)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.PortalSessionResponse{URL: url})
}

// VerifyCheckout godoc
// POST /api/v1/billing/verify
// Confirms a completed checkout from the success page. Idempotent: if the
// webhook already upgraded the account this only re-reads it.
func (h *BillingHandler) VerifyCheckout(c *gin.Context) {
	var req model.VerifyCheckoutRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	userID, err := h.billingService.VerifyCheckout(c.Request.Context(), req.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentIncomplete):
			response.Fail(c, http.StatusBadRequest, response.ErrPaymentIncomplete)
		case errors.Is(err, service.ErrNoUserReference):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, model.VerifyCheckoutResponse{Success: true, UserID: userID.String()})
}

// currentUser loads the authenticated user or writes the failure response.
func (h *BillingHandler) currentUser(c *gin.Context) *model.User {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil
	}
	user, err := h.authService.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
		return nil
	}
	return user
}

package model

// CheckoutSessionRequest starts a subscription checkout.
type CheckoutSessionRequest struct {
	// PaymentMethod may be "link" to additionally offer Stripe Link at
	// checkout; anything else means card only.
	PaymentMethod string `json:"payment_method" binding:"omitempty,oneof=card link"`
}

// CheckoutSessionResponse carries the Stripe-hosted checkout session ID.
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
}

// PortalSessionResponse carries the URL of a Stripe billing portal session.
type PortalSessionResponse struct {
	URL string `json:"url"`
}

// VerifyCheckoutRequest confirms a completed checkout from the success page.
type VerifyCheckoutRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// VerifyCheckoutResponse reports the outcome of a checkout verification.
type VerifyCheckoutResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"user_id"`
}

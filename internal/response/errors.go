package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_ALREADY_REGISTERED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Extraction ────────────────────────────────────────────────────
	ErrInvalidSenecaURL   ErrCode = "INVALID_SENECA_URL"
	ErrUpstreamFetch      ErrCode = "UPSTREAM_FETCH_FAILED"
	ErrExtractionFailed   ErrCode = "EXTRACTION_FAILED"
	ErrWeeklyLimitReached ErrCode = "WEEKLY_LIMIT_REACHED"

	// ─── Billing ───────────────────────────────────────────────────────
	ErrNoStripeCustomer  ErrCode = "NO_STRIPE_CUSTOMER"
	ErrPaymentIncomplete ErrCode = "PAYMENT_NOT_COMPLETED"
	ErrWebhookSignature  ErrCode = "WEBHOOK_SIGNATURE_INVALID"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email or password is incorrect."
	case ErrEmailTaken:
		return "An account with this email already exists."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Extraction ────────────────────────────────────────────────────
	case ErrInvalidSenecaURL:
		return "That doesn't look like a Seneca assignment link. Paste the full classroom URL."
	case ErrUpstreamFetch:
		return "Could not reach Seneca to load this assignment. Please try again."
	case ErrExtractionFailed:
		return "Failed to process content."
	case ErrWeeklyLimitReached:
		return "You've used all of this week's free extractions. Upgrade to premium for unlimited access."

	// ─── Billing ───────────────────────────────────────────────────────
	case ErrNoStripeCustomer:
		return "No billing profile exists for this account yet."
	case ErrPaymentIncomplete:
		return "Payment has not been completed."
	case ErrWebhookSignature:
		return "Webhook signature verification failed."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Plan represents a user's subscription tier.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// User represents an account in the helper.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Plan             Plan       `json:"plan"`
	WeeklyUsageCount int        `json:"weekly_usage_count"`
	UsageWeekStart   *time.Time `json:"usage_week_start,omitempty"`

	// Stripe linkage, populated once the user has been through checkout.
	StripeCustomerID     *string    `json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id,omitempty"`
	StripePriceID        *string    `json:"stripe_price_id,omitempty"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPremium reports whether the user currently holds an unmetered plan.
func (u *User) IsPremium() bool {
	return u.Plan == PlanPremium
}

// RegisterRequest is the payload for creating a new account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned after successful login or registration.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// UsageSnapshot summarizes a user's quota position for the current ISO week.
type UsageSnapshot struct {
	Plan        Plan `json:"plan"`
	Used        int  `json:"used"`
	WeeklyLimit int  `json:"weekly_limit"` // 0 means unmetered
	Remaining   int  `json:"remaining"`    // -1 means unmetered
}

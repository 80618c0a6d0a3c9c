package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sparx365/homework-backend/internal/config"
	"github.com/sparx365/homework-backend/internal/model"
	"github.com/sparx365/homework-backend/internal/repository"
	"github.com/stripe/stripe-go/v78"
	portalsession "github.com/stripe/stripe-go/v78/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/subscription"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Billing errors surfaced to handlers.
var (
	ErrNoStripeCustomer  = errors.New("user has no stripe customer")
	ErrPaymentIncomplete = errors.New("payment not completed")
	ErrNoUserReference   = errors.New("no user associated with this session")
	ErrBadSignature      = errors.New("webhook signature verification failed")
)

// BillingService wraps the Stripe subscription flow: hosted checkout,
// customer portal, success-page verification and the webhook that keeps the
// user's plan in sync with subscription lifecycle events.
type BillingService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
	log      zerolog.Logger
}

// NewBillingService creates a BillingService and sets the global Stripe key.
func NewBillingService(cfg *config.Config, userRepo *repository.UserRepository, log zerolog.Logger) *BillingService {
	stripe.Key = cfg.StripeSecretKey
	return &BillingService{
		cfg:      cfg,
		userRepo: userRepo,
		log:      log.With().Str("component", "billing_service").Logger(),
	}
}

// CreateCheckoutSession starts a subscription checkout for the premium price.
// The user ID rides along as client_reference_id so the webhook and the
// success page can find the account again.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, user *model.User, paymentMethod string) (string, error) {
	methods := []string{"card"}
	if paymentMethod == "link" {
		methods = append(methods, "link")
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice(methods),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(s.cfg.StripePremiumPriceID),
			Quantity: stripe.Int64(1),
		}},
		Mode:                stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail:       stripe.String(user.Email),
		ClientReferenceID:   stripe.String(user.ID.String()),
		SuccessURL:          stripe.String(s.cfg.BillingReturnURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:           stripe.String(s.cfg.BillingReturnURL + "/canceled"),
		AllowPromotionCodes: stripe.Bool(true),
	}
	params.Context = ctx

	session, err := checkoutsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("session_id", session.ID).
		Msg("Checkout session created")
	return session.ID, nil
}

// CreatePortalSession opens the Stripe customer portal for subscription
// management. Requires a stored customer ID from a previous checkout.
func (s *BillingService) CreatePortalSession(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return "", ErrNoStripeCustomer
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*user.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.BillingReturnURL),
	}
	params.Context = ctx

	session, err := portalsession.New(params)
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return session.URL, nil
}

// VerifyCheckout confirms a completed checkout from the success page. If the
// webhook already upgraded the account this is a no-op; otherwise the
// upgrade is applied here, so a delayed webhook never blocks the user.
func (s *BillingService) VerifyCheckout(ctx context.Context, sessionID string) (uuid.UUID, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return uuid.Nil, fmt.Errorf("retrieve checkout session: %w", err)
	}

	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return uuid.Nil, ErrPaymentIncomplete
	}

	userID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		return uuid.Nil, ErrNoUserReference
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsPremium() {
		if err := s.applyCheckout(ctx, session); err != nil {
			return uuid.Nil, err
		}
	}
	return userID, nil
}

// HandleWebhookEvent verifies the Stripe signature and dispatches supported
// subscription lifecycle events. Unknown events are acknowledged and logged.
func (s *BillingService) HandleWebhookEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.StripeWebhookSecret)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return s.handleCheckoutCompleted(ctx, &session)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.handleSubscriptionUpdated(ctx, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return s.handleSubscriptionDeleted(ctx, &sub)

	default:
		s.log.Debug().Str("event_type", string(event.Type)).Msg("Unhandled webhook event")
		return nil
	}
}

func (s *BillingService) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	if session.ClientReferenceID == "" {
		s.log.Error().Str("session_id", session.ID).Msg("Checkout session has no user reference")
		return nil
	}
	return s.applyCheckout(ctx, session)
}

// applyCheckout upgrades the referenced user using the subscription attached
// to a paid checkout session.
func (s *BillingService) applyCheckout(ctx context.Context, session *stripe.CheckoutSession) error {
	userID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		return ErrNoUserReference
	}
	if session.Subscription == nil || session.Customer == nil {
		s.log.Error().Str("session_id", session.ID).Msg("Checkout session missing subscription or customer")
		return nil
	}

	subParams := &stripe.SubscriptionParams{}
	subParams.Context = ctx
	sub, err := subscription.Get(session.Subscription.ID, subParams)
	if err != nil {
		return fmt.Errorf("retrieve subscription: %w", err)
	}

	priceID := ""
	if len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}

	if err := s.userRepo.ActivateSubscription(ctx, userID,
		session.Customer.ID, sub.ID, priceID, sub.CurrentPeriodEnd); err != nil {
		return fmt.Errorf("activate subscription: %w", err)
	}

	s.log.Info().Str("user_id", userID.String()).Str("subscription_id", sub.ID).
		Msg("User upgraded to premium")
	return nil
}

func (s *BillingService) handleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription) error {
	user, err := s.userRepo.GetBySubscriptionID(ctx, sub.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.log.Warn().Str("subscription_id", sub.ID).Msg("No user for updated subscription")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup subscription user: %w", err)
	}

	priceID := ""
	if len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		priceID = sub.Items.Data[0].Price.ID
	}

	if err := s.userRepo.RenewSubscription(ctx, sub.ID, priceID, sub.CurrentPeriodEnd); err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID.String()).Str("subscription_id", sub.ID).
		Msg("Subscription period renewed")
	return nil
}

func (s *BillingService) handleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	user, err := s.userRepo.GetBySubscriptionID(ctx, sub.ID)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.log.Warn().Str("subscription_id", sub.ID).Msg("No user for deleted subscription")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup subscription user: %w", err)
	}

	if err := s.userRepo.CancelSubscription(ctx, sub.ID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID.String()).Str("subscription_id", sub.ID).
		Msg("Subscription canceled, user back on free plan")
	return nil
}

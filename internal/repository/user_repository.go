package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sparx365/homework-backend/internal/model"
)

var (
	ErrDuplicateEmail = errors.New("user with this email already exists")
	ErrUserNotFound   = errors.New("user not found")
)

const userColumns = `id, email, password_hash, plan, weekly_usage_count, usage_week_start,
	stripe_customer_id, stripe_subscription_id, stripe_price_id, current_period_end,
	created_at, updated_at`

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Plan, &u.WeeklyUsageCount, &u.UsageWeekStart,
		&u.StripeCustomerID, &u.StripeSubscriptionID, &u.StripePriceID, &u.CurrentPeriodEnd,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Create inserts a new user with the free plan.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash, plan)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`,
		u.ID, u.Email, u.PasswordHash, u.Plan,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetBySubscriptionID retrieves the user linked to a Stripe subscription.
// Webhook events carry only the subscription ID, not our user ID.
func (r *UserRepository) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE stripe_subscription_id = $1`, subscriptionID))
}

// ActivateSubscription upgrades a user to premium and stores the Stripe
// linkage from a completed checkout.
func (r *UserRepository) ActivateSubscription(ctx context.Context, userID uuid.UUID, customerID, subscriptionID, priceID string, periodEnd int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET plan = $2, stripe_customer_id = $3, stripe_subscription_id = $4,
		    stripe_price_id = $5, current_period_end = to_timestamp($6), updated_at = NOW()
		 WHERE id = $1`,
		userID, model.PlanPremium, customerID, subscriptionID, priceID, periodEnd)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RenewSubscription updates the billing period and price after a
// subscription update event.
func (r *UserRepository) RenewSubscription(ctx context.Context, subscriptionID, priceID string, periodEnd int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET stripe_price_id = $2, current_period_end = to_timestamp($3), updated_at = NOW()
		 WHERE stripe_subscription_id = $1`,
		subscriptionID, priceID, periodEnd)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CancelSubscription drops a user back to the free plan when their
// subscription is deleted.
func (r *UserRepository) CancelSubscription(ctx context.Context, subscriptionID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET plan = $2, current_period_end = NULL, updated_at = NOW()
		 WHERE stripe_subscription_id = $1`,
		subscriptionID, model.PlanFree)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordUsage bumps the persisted weekly usage counter, resetting it when
// the stored week start predates the given one. Redis holds the live
// counter; this row is the durable copy written by the usage worker.
func (r *UserRepository) RecordUsage(ctx context.Context, userID uuid.UUID, weekStart string, count int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET
		    weekly_usage_count = CASE
		        WHEN usage_week_start IS NULL OR usage_week_start < $2::date THEN $3
		        ELSE weekly_usage_count + $3
		    END,
		    usage_week_start = GREATEST(COALESCE(usage_week_start, $2::date), $2::date),
		    updated_at = NOW()
		 WHERE id = $1`,
		userID, weekStart, count)
	return err
}

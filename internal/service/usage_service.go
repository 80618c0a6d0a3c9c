package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sparx365/homework-backend/internal/config"
	"github.com/sparx365/homework-backend/internal/model"
)

// ErrWeeklyLimitReached is returned when a free-plan user has exhausted the
// current ISO week's extraction quota.
var ErrWeeklyLimitReached = errors.New("weekly extraction limit reached")

// usageCounterTTL keeps the live counter around long enough to cover the
// current week plus a grace window for the persistence worker.
const usageCounterTTL = 14 * 24 * time.Hour

// UsageEvent is the queue payload the usage worker drains into Postgres.
type UsageEvent struct {
	UserID    string `json:"user_id"`
	WeekStart string `json:"week_start"` // YYYY-MM-DD of the ISO week's Monday
	UsedAt    int64  `json:"used_at"`
}

// UsageService meters extractions per user per ISO week. The live counter
// lives in Redis; every consumption is also queued for durable persistence
// by worker.UsageWorker.
type UsageService struct {
	cfg *config.Config
	rdb *redis.Client
	log zerolog.Logger
}

// NewUsageService creates a new UsageService.
func NewUsageService(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *UsageService {
	return &UsageService{
		cfg: cfg,
		rdb: rdb,
		log: log.With().Str("component", "usage_service").Logger(),
	}
}

// Consume reserves one extraction for the user. Premium users pass through
// unmetered. For free users the Redis counter is incremented first and
// rolled back when over the limit, so two concurrent requests cannot both
// slip under it. The reservation becomes durable only on Commit; a failed
// extraction is handed back with Refund.
func (s *UsageService) Consume(ctx context.Context, user *model.User) error {
	if user.IsPremium() {
		return nil
	}

	key := config.CacheKey.WeeklyUsageKey(user.ID.String(), time.Now())

	used, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	// Fresh counters need an expiry; Incr created the key with none.
	if used == 1 {
		if err := s.rdb.Expire(ctx, key, usageCounterTTL).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to set usage TTL")
		}
	}

	if int(used) > s.cfg.FreeWeeklyLimit {
		if err := s.rdb.Decr(ctx, key).Err(); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to roll back usage increment")
		}
		return ErrWeeklyLimitReached
	}
	return nil
}

// Commit durably records a reserved extraction once it has produced a
// result, by queueing it for the persistence worker.
func (s *UsageService) Commit(ctx context.Context, user *model.User) {
	if user.IsPremium() {
		return
	}
	s.enqueueEvent(ctx, user.ID, time.Now())
}

// Refund hands back a reserved extraction that failed after Consume, so an
// upstream outage does not burn through a free user's weekly quota.
func (s *UsageService) Refund(ctx context.Context, user *model.User) {
	if user.IsPremium() {
		return
	}
	key := config.CacheKey.WeeklyUsageKey(user.ID.String(), time.Now())
	if err := s.rdb.Decr(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Failed to refund usage reservation")
	}
}

// Snapshot returns the user's quota position for the current week.
func (s *UsageService) Snapshot(ctx context.Context, user *model.User) (*model.UsageSnapshot, error) {
	if user.IsPremium() {
		return &model.UsageSnapshot{Plan: user.Plan, WeeklyLimit: 0, Remaining: -1}, nil
	}

	key := config.CacheKey.WeeklyUsageKey(user.ID.String(), time.Now())
	used, err := s.rdb.Get(ctx, key).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read usage: %w", err)
	}

	remaining := s.cfg.FreeWeeklyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return &model.UsageSnapshot{
		Plan:        user.Plan,
		Used:        used,
		WeeklyLimit: s.cfg.FreeWeeklyLimit,
		Remaining:   remaining,
	}, nil
}

// enqueueEvent pushes a usage event onto the persistence queue. Queue
// failures are logged and swallowed; metering already happened in Redis and
// a lost durable count is preferable to a failed extraction.
func (s *UsageService) enqueueEvent(ctx context.Context, userID uuid.UUID, at time.Time) {
	payload, _ := json.Marshal(UsageEvent{
		UserID:    userID.String(),
		WeekStart: isoWeekStart(at),
		UsedAt:    at.Unix(),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistUsageQueue, payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to enqueue usage event")
	}
}

// isoWeekStart formats the Monday of t's ISO week as YYYY-MM-DD.
func isoWeekStart(t time.Time) string {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	monday := t.AddDate(0, 0, 1-weekday)
	return monday.Format("2006-01-02")
}

package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sparx365/homework-backend/internal/config"
	"github.com/sparx365/homework-backend/internal/repository"
)

const (
	UsageBatchSize    = 50
	UsageBatchTimeout = 2 * time.Second
	UsagePollTimeout  = 1 * time.Second
)

// UsageWorker drains the usage persistence queue into Postgres. The live
// quota counter lives in Redis; this worker only makes it durable, so it can
// lag behind without affecting metering decisions.
type UsageWorker struct {
	pool     *pgxpool.Pool
	userRepo *repository.UserRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

func NewUsageWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *UsageWorker {
	return &UsageWorker{
		pool:     pool,
		userRepo: repository.NewUserRepository(pool),
		rdb:      rdb,
		log:      log.With().Str("component", "usage_worker").Logger(),
	}
}

type usagePayload struct {
	UserID    string `json:"user_id"`
	WeekStart string `json:"week_start"`
	UsedAt    int64  `json:"used_at"`
}

// decodeUsagePayload parses one queue item and rejects anything that could
// never be persisted. Malformed items must be dropped at ingestion: letting
// them reach the flush path would fail every batch they ride in and requeue
// them forever.
func decodeUsagePayload(raw string) (*usagePayload, error) {
	var p usagePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(p.UserID); err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", p.UserID, err)
	}
	if _, err := time.Parse("2006-01-02", p.WeekStart); err != nil {
		return nil, fmt.Errorf("invalid week start %q: %w", p.WeekStart, err)
	}
	return &p, nil
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *UsageWorker) Start(ctx context.Context) {
	w.log.Info().Msg("UsageWorker started")

	batch := make([]*usagePayload, 0, UsageBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= UsageBatchSize || time.Since(lastFlush) >= UsageBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, UsagePollTimeout, config.WorkerKey.PersistUsageQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			p, err := decodeUsagePayload(item[1])
			if err != nil {
				w.log.Error().Err(err).Msg("Dropping invalid usage payload")
				continue
			}

			batch = append(batch, p)
		}
	}
}

// ----------------------------------------------------------------
// Batch Update Wrapper
// ----------------------------------------------------------------

func (w *UsageWorker) flushSafe(ctx context.Context, batch []*usagePayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkRecordUsage(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk usage update failed, using fallback")

		for _, p := range batch {
			if err := w.persistSingle(ctx, p); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed — requeueing")
				raw, _ := json.Marshal(p)
				w.rdb.RPush(ctx, config.WorkerKey.PersistUsageQueue, raw)
			}
		}
	}
}

// ----------------------------------------------------------------
// BULK PostgreSQL UPDATE using UNNEST + alias
// ----------------------------------------------------------------

// bulkRecordUsage collapses the batch to one row per (user, week) and applies
// the same week-reset rule as a single usage write: a newer week replaces the
// stale counter, the same week increments it.
func (w *UsageWorker) bulkRecordUsage(ctx context.Context, batch []*usagePayload) error {
	type bucket struct {
		userID    uuid.UUID
		weekStart string
		count     int
	}

	buckets := make(map[string]*bucket, len(batch))
	order := make([]string, 0, len(batch))
	for _, p := range batch {
		uID, err := uuid.Parse(p.UserID)
		if err != nil {
			// Ingestion already validated this; never abort the batch for it.
			w.log.Error().Str("user_id", p.UserID).Msg("Dropping usage payload with invalid user id")
			continue
		}
		key := p.UserID + "|" + p.WeekStart
		if b, ok := buckets[key]; ok {
			b.count++
			continue
		}
		buckets[key] = &bucket{userID: uID, weekStart: p.WeekStart, count: 1}
		order = append(order, key)
	}

	n := len(order)
	if n == 0 {
		return nil
	}
	userIDs := make([]uuid.UUID, 0, n)
	weekStarts := make([]string, 0, n)
	counts := make([]int, 0, n)
	for _, key := range order {
		b := buckets[key]
		userIDs = append(userIDs, b.userID)
		weekStarts = append(weekStarts, b.weekStart)
		counts = append(counts, b.count)
	}

	query := `
		UPDATE users AS u
		SET weekly_usage_count = CASE
		        WHEN u.usage_week_start IS NULL OR u.usage_week_start < t.week_start THEN t.count
		        ELSE u.weekly_usage_count + t.count
		    END,
		    usage_week_start = GREATEST(COALESCE(u.usage_week_start, t.week_start), t.week_start),
		    updated_at = NOW()
		FROM (
			SELECT
				x.user_id,
				x.week_start,
				x.count
			FROM UNNEST(
				$1::uuid[],
				$2::date[],
				$3::int[]
			) AS x (user_id, week_start, count)
		) AS t
		WHERE u.id = t.user_id
	`

	_, err := w.pool.Exec(ctx, query, userIDs, weekStarts, counts)
	return err
}

// ----------------------------------------------------------------
// FALLBACK single update
// ----------------------------------------------------------------

func (w *UsageWorker) persistSingle(ctx context.Context, p *usagePayload) error {
	uID, err := uuid.Parse(p.UserID)
	if err != nil {
		// Discard: a payload that cannot name a user will never persist.
		w.log.Error().Str("user_id", p.UserID).Msg("Dropping usage payload with invalid user id")
		return nil
	}
	return w.userRepo.RecordUsage(ctx, uID, p.WeekStart, 1)
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sparx365/homework-backend/internal/model"
)

// ExtractionRepository persists extraction history rows.
type ExtractionRepository struct {
	pool *pgxpool.Pool
}

// NewExtractionRepository creates a new ExtractionRepository.
func NewExtractionRepository(pool *pgxpool.Pool) *ExtractionRepository {
	return &ExtractionRepository{pool: pool}
}

// Create records one completed extraction.
func (r *ExtractionRepository) Create(ctx context.Context, e *model.Extraction) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO extractions (id, user_id, course_id, section_id, title, question_count, from_cache)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		e.ID, e.UserID, e.CourseID, e.SectionID, e.Title, e.QuestionCount, e.FromCache,
	).Scan(&e.CreatedAt)
}

// ListByUser retrieves a user's extraction history, newest first.
func (r *ExtractionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Extraction, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM extractions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, course_id, section_id, title, question_count, from_cache, created_at
		 FROM extractions WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var extractions []model.Extraction
	for rows.Next() {
		var e model.Extraction
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.SectionID, &e.Title,
			&e.QuestionCount, &e.FromCache, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		extractions = append(extractions, e)
	}
	return extractions, total, rows.Err()
}

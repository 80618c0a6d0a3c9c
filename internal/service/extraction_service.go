package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sparx365/homework-backend/internal/config"
	"github.com/sparx365/homework-backend/internal/model"
	"github.com/sparx365/homework-backend/internal/repository"
	"github.com/sparx365/homework-backend/internal/seneca"
)

// ExtractionService runs the full extract flow: quota, cache, upstream
// fetch, normalization, history.
type ExtractionService struct {
	cfg            *config.Config
	client         *seneca.Client
	extractor      *seneca.Extractor
	usageService   *UsageService
	extractionRepo *repository.ExtractionRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewExtractionService creates a new ExtractionService.
func NewExtractionService(
	cfg *config.Config,
	client *seneca.Client,
	extractor *seneca.Extractor,
	usageService *UsageService,
	extractionRepo *repository.ExtractionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExtractionService {
	return &ExtractionService{
		cfg:            cfg,
		client:         client,
		extractor:      extractor,
		usageService:   usageService,
		extractionRepo: extractionRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "extraction_service").Logger(),
	}
}

// Extract resolves a pasted assignment URL to a normalized result. Cache
// hits skip the upstream fetch but still count against the weekly quota —
// the product meters help requests, not CDN traffic.
func (s *ExtractionService) Extract(ctx context.Context, user *model.User, rawURL string) (*model.ExtractionResult, error) {
	ref, err := seneca.ParseAssignmentURL(rawURL)
	if err != nil {
		return nil, err
	}

	if err := s.usageService.Consume(ctx, user); err != nil {
		return nil, err
	}

	result, fromCache, err := s.resolve(ctx, ref)
	if err != nil {
		s.usageService.Refund(ctx, user)
		return nil, err
	}

	s.usageService.Commit(ctx, user)
	s.recordHistory(ctx, user.ID, ref, result, fromCache)
	return result, nil
}

// ExtractStream is the WebSocket flavour: sections are pushed through emit
// as the assembler completes them. Cached results are replayed section by
// section so the client-side rendering path is identical either way.
func (s *ExtractionService) ExtractStream(ctx context.Context, user *model.User, rawURL string, emit func(model.Section)) (*model.ExtractionResult, error) {
	ref, err := seneca.ParseAssignmentURL(rawURL)
	if err != nil {
		return nil, err
	}

	if err := s.usageService.Consume(ctx, user); err != nil {
		return nil, err
	}

	if cached := s.cachedResult(ctx, ref); cached != nil {
		for _, section := range cached.Sections {
			emit(section)
		}
		s.usageService.Commit(ctx, user)
		s.recordHistory(ctx, user.ID, ref, cached, true)
		return cached, nil
	}

	payload, err := s.client.FetchSection(ctx, ref)
	if err != nil {
		s.usageService.Refund(ctx, user)
		return nil, err
	}

	var sections []model.Section
	title, err := s.extractor.ExtractStream(payload, func(section model.Section) {
		sections = append(sections, section)
		emit(section)
	})
	if err != nil {
		s.usageService.Refund(ctx, user)
		return nil, err
	}

	result := &model.ExtractionResult{Title: title, Sections: sections}
	s.cacheResult(ctx, ref, result)
	s.usageService.Commit(ctx, user)
	s.recordHistory(ctx, user.ID, ref, result, false)
	return result, nil
}

// History returns the user's past extractions, newest first.
func (s *ExtractionService) History(ctx context.Context, userID uuid.UUID, page, perPage int) ([]model.Extraction, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	return s.extractionRepo.ListByUser(ctx, userID, perPage, (page-1)*perPage)
}

func (s *ExtractionService) resolve(ctx context.Context, ref seneca.SectionRef) (*model.ExtractionResult, bool, error) {
	if cached := s.cachedResult(ctx, ref); cached != nil {
		return cached, true, nil
	}

	payload, err := s.client.FetchSection(ctx, ref)
	if err != nil {
		return nil, false, err
	}

	result, err := s.extractor.Extract(payload)
	if err != nil {
		return nil, false, err
	}

	s.cacheResult(ctx, ref, result)
	return result, false, nil
}

func (s *ExtractionService) cachedResult(ctx context.Context, ref seneca.SectionRef) *model.ExtractionResult {
	key := config.CacheKey.SectionResultKey(ref.CourseID, ref.SectionID)
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return nil
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Dropping undecodable cache entry")
		s.rdb.Del(ctx, key)
		return nil
	}
	return &result
}

func (s *ExtractionService) cacheResult(ctx context.Context, ref seneca.SectionRef, result *model.ExtractionResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to marshal result for cache")
		return
	}
	key := config.CacheKey.SectionResultKey(ref.CourseID, ref.SectionID)
	if err := s.rdb.Set(ctx, key, raw, s.cfg.ExtractionCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// recordHistory writes one history row. Failures are logged, not surfaced:
// the user already has their answers.
func (s *ExtractionService) recordHistory(ctx context.Context, userID uuid.UUID, ref seneca.SectionRef, result *model.ExtractionResult, fromCache bool) {
	entry := &model.Extraction{
		ID:            uuid.New(),
		UserID:        userID,
		CourseID:      ref.CourseID,
		SectionID:     ref.SectionID,
		Title:         result.Title,
		QuestionCount: result.QuestionCount(),
		FromCache:     fromCache,
	}
	if err := s.extractionRepo.Create(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Failed to record extraction history")
	}
}

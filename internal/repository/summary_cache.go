package repository

import (
	"context"
	"errors"
	"time"

	"MakerLens/internal/domain/models"
	domrepo "MakerLens/internal/domain/repository"
	"MakerLens/pkg/cache"
	applogger "MakerLens/pkg/logger"
)

const summaryCacheTTL = 5 * time.Minute

// CacheSummaryStore caches summary query results in front of the result
// store. Misses and marshal failures degrade to the store, never to an error.
type CacheSummaryStore struct {
	cache cache.Service
	l     *applogger.Logger
}

func NewCacheSummaryStore(c cache.Service, l *applogger.Logger) domrepo.SummaryCache {
	return &CacheSummaryStore{cache: c, l: l}
}

func (s *CacheSummaryStore) GetSummaries(ctx context.Context, key string) ([]models.WindowSummary, bool) {
	var out []models.WindowSummary
	err := s.cache.Get(ctx, key, &out)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.l.Warn("summary cache get failed", applogger.String("key", key), applogger.Error(err))
		}
		return nil, false
	}
	return out, true
}

func (s *CacheSummaryStore) SetSummaries(ctx context.Context, key string, v []models.WindowSummary) {
	if err := s.cache.Set(ctx, key, v, summaryCacheTTL); err != nil {
		s.l.Warn("summary cache set failed", applogger.String("key", key), applogger.Error(err))
	}
}

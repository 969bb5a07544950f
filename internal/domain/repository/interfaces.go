package repository

import (
	"context"

	"MakerLens/internal/domain/models"
)

// ResultStore persists classified fills and window summaries.
type ResultStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreFills(ctx context.Context, runID string, fills []models.ClassifiedFill) error
	StoreSummaries(ctx context.Context, runID string, summaries []models.WindowSummary) error
	QuerySummaries(ctx context.Context, runID string, limit int) ([]models.WindowSummary, error)
	QuerySummary(ctx context.Context, runID, windowID string) (*models.WindowSummary, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher streams classified fills to a message bus.
type Publisher interface {
	PublishFills(ctx context.Context, runID string, fills []models.ClassifiedFill) error
	PublishSummary(ctx context.Context, runID string, s *models.WindowSummary) error
	Close() error
}

// SummaryCache fronts the result store for the read API.
type SummaryCache interface {
	GetSummaries(ctx context.Context, key string) ([]models.WindowSummary, bool)
	SetSummaries(ctx context.Context, key string, v []models.WindowSummary)
}

// Metrics records pipeline counters for observability.
type Metrics interface {
	RecordRecords(kind string, parsed, discarded int)
	RecordFill(label string)
	RecordWindowSkipped(reason string)
	RecordWindowLatency(seconds float64)
	RecordMakerFraction(frac float64)
	RecordClassificationRate(rate float64)
	RecordError(kind string)
}

package repository

import (
	"context"
	"fmt"

	"MakerLens/internal/domain/models"
	domrepo "MakerLens/internal/domain/repository"
	pkgkafka "MakerLens/pkg/kafka"
	applogger "MakerLens/pkg/logger"
)

// KafkaPublisher streams run results onto Kafka topics, keyed by window so
// each window's records stay ordered within a partition.
type KafkaPublisher struct {
	producer     *pkgkafka.Producer
	fillTopic    string
	summaryTopic string
	l            *applogger.Logger
}

func NewKafkaPublisher(producer *pkgkafka.Producer, fillTopic, summaryTopic string, l *applogger.Logger) domrepo.Publisher {
	return &KafkaPublisher{
		producer:     producer,
		fillTopic:    fillTopic,
		summaryTopic: summaryTopic,
		l:            l,
	}
}

type fillEnvelope struct {
	RunID string                `json:"run_id"`
	Fill  models.ClassifiedFill `json:"fill"`
}

type summaryEnvelope struct {
	RunID   string                `json:"run_id"`
	Summary *models.WindowSummary `json:"summary"`
}

func (p *KafkaPublisher) PublishFills(ctx context.Context, runID string, fills []models.ClassifiedFill) error {
	if len(fills) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(fills))
	for i := range fills {
		msgs = append(msgs, pkgkafka.Message{
			Key:   []byte(fills[i].WindowID),
			Value: fillEnvelope{RunID: runID, Fill: fills[i]},
		})
	}
	if err := p.producer.PublishBatch(ctx, p.fillTopic, msgs); err != nil {
		return fmt.Errorf("publish fills: %w", err)
	}
	p.l.Debug("fills published",
		applogger.String("topic", p.fillTopic),
		applogger.Int("count", len(fills)),
	)
	return nil
}

func (p *KafkaPublisher) PublishSummary(ctx context.Context, runID string, s *models.WindowSummary) error {
	err := p.producer.Publish(ctx, p.summaryTopic, []byte(s.WindowID), summaryEnvelope{RunID: runID, Summary: s})
	if err != nil {
		return fmt.Errorf("publish summary %s: %w", s.WindowID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

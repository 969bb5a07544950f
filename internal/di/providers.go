package di

import (
	"context"
	"fmt"
	"time"

	"MakerLens/internal/domain/repository"
	"MakerLens/internal/handler/api"
	internalrepo "MakerLens/internal/repository"
	"MakerLens/internal/usecase"
	"MakerLens/pkg/cache"
	pkgch "MakerLens/pkg/clickhouse"
	"MakerLens/pkg/config"
	xhttp "MakerLens/pkg/http"
	pkgkafka "MakerLens/pkg/kafka"
	applogger "MakerLens/pkg/logger"
	"MakerLens/pkg/metrics"
	"MakerLens/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideResultStore creates the ClickHouse store when that backend is
// configured, nil otherwise.
func ProvideResultStore(cfg *config.Config, l *applogger.Logger) (repository.ResultStore, error) {
	if cfg.Backend.Type != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewCHResultStore(client, l)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvidePublisher creates the Kafka publisher when that backend is
// configured, nil otherwise.
func ProvidePublisher(cfg *config.Config, l *applogger.Logger) (repository.Publisher, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchSize(cfg.Kafka.BatchSize),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.FillsTopic, cfg.Kafka.SummaryTopic, l), nil
}

// ProvideSummaryCache fronts the store with Redis when enabled, in-memory
// otherwise.
func ProvideSummaryCache(cfg *config.Config, l *applogger.Logger) (repository.SummaryCache, error) {
	var svc cache.Service
	if cfg.Cache.RedisEnabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Cache.RedisHost, cfg.Cache.RedisPort),
			cache.WithRedisDB(cfg.Cache.RedisDB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		svc = rc
	} else {
		svc = cache.NewMemoryCache()
	}
	return internalrepo.NewCacheSummaryStore(svc, l), nil
}

// ProvidePipeline creates the analysis pipeline.
func ProvidePipeline(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *usecase.Pipeline {
	return usecase.NewPipeline(cfg, m, l)
}

// ProvideResultProcessor creates the backend router.
func ProvideResultProcessor(
	pub repository.Publisher,
	store repository.ResultStore,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.ResultProcessor {
	return usecase.NewResultProcessor(pub, store, m, cfg.Backend.Type, cfg.Backend.BatchSize, l)
}

// ProvideRunHolder creates the latest-run holder shared by the API.
func ProvideRunHolder() *usecase.RunHolder {
	return usecase.NewRunHolder()
}

// ProvideResultsHandler creates the API handler.
func ProvideResultsHandler(
	l *applogger.Logger,
	runs *usecase.RunHolder,
	store repository.ResultStore,
	summaries repository.SummaryCache,
) xhttp.Handler {
	return api.NewResultsHandler(l, runs, store, summaries)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	processor *usecase.ResultProcessor,
	runs *usecase.RunHolder,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, pipeline, processor, runs, handler)
}

// Package app wires configuration, infrastructure clients and the chat engine
// into one runnable application.  Both the API server binary and the CLI
// build on this bootstrap so the wiring exists in exactly one place.
package app

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/KeyIP-Chat/internal/chat"
	"github.com/turtacn/KeyIP-Chat/internal/config"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/inference"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/logging"
	prommetrics "github.com/turtacn/KeyIP-Chat/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/search/milvus"
	"github.com/turtacn/KeyIP-Chat/internal/infrastructure/search/opensearch"
	"github.com/turtacn/KeyIP-Chat/internal/ingest"
	httpiface "github.com/turtacn/KeyIP-Chat/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Chat/internal/interfaces/http/handlers"
)

// App holds every constructed component.
type App struct {
	Config  *config.Config
	Log     logging.Logger
	Metrics *prommetrics.Metrics

	Milvus *milvus.Client
	Index  *milvus.Index
	Ollama *inference.OllamaClient

	Engine  *chat.Engine
	Store   chat.Store
	Catalog *opensearch.Catalog // nil when no addresses configured

	redisClient *redis.Client // nil with the memory backend
}

// New constructs and connects the full application.  The vector collection is
// created and loaded here, before any request is served, so startup ordering
// is deterministic.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}

	metrics := prommetrics.NewMetrics(prometheus.DefaultRegisterer)

	ollama, err := inference.NewOllamaClient(inference.OllamaConfig{
		BaseURL:        cfg.Ollama.BaseURL,
		LLMModel:       cfg.Ollama.LLMModel,
		EmbedModel:     cfg.Ollama.EmbedModel,
		RequestTimeout: cfg.Ollama.RequestTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	milvusClient, err := milvus.NewClient(milvus.ClientConfig{
		Address:        cfg.Milvus.Addr,
		Username:       cfg.Milvus.Username,
		Password:       cfg.Milvus.Password,
		DBName:         cfg.Milvus.DBName,
		ConnectTimeout: cfg.Milvus.ConnectTimeout,
	}, log)
	if err != nil {
		return nil, err
	}

	index := milvus.NewIndex(milvusClient, ollama, milvus.IndexConfig{
		Collection:    cfg.Milvus.Collection,
		EmbeddingDim:  cfg.Milvus.EmbeddingDim,
		SearchTimeout: cfg.Milvus.SearchTimeout,
	}, log)
	if err := index.EnsureCollection(ctx); err != nil {
		_ = milvusClient.Close()
		return nil, err
	}

	reranker := inference.NewReranker(inference.RerankerConfig{
		BaseURL:        cfg.Reranker.BaseURL,
		Model:          cfg.Reranker.Model,
		RequestTimeout: cfg.Reranker.RequestTimeout,
	}, log)

	a := &App{
		Config:  cfg,
		Log:     log,
		Metrics: metrics,
		Milvus:  milvusClient,
		Index:   index,
		Ollama:  ollama,
	}

	if cfg.Chat.SessionBackend == "redis" {
		redisClient, err := redis.NewClient(redis.ClientConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.redisClient = redisClient
		a.Store = redis.NewSessionStore(redisClient, cfg.Redis.KeyPrefix, cfg.Chat.HistoryTTL, log)
	} else {
		a.Store = chat.NewMemoryStore(cfg.Chat.HistoryTTL)
	}

	if len(cfg.OpenSearch.Addresses) > 0 {
		osClient, err := opensearch.NewClient(opensearch.ClientConfig{
			Addresses:          cfg.OpenSearch.Addresses,
			User:               cfg.OpenSearch.User,
			Password:           cfg.OpenSearch.Password,
			InsecureSkipVerify: cfg.OpenSearch.InsecureSkipVerify,
		}, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Catalog = opensearch.NewCatalog(osClient, cfg.OpenSearch.PatentIndex, log)
	}

	a.Engine = chat.NewEngine(index, reranker, index, ollama, a.Store, cfg.Chat, log)
	return a, nil
}

// Router assembles the HTTP routes over the constructed components.
func (a *App) Router() *gin.Engine {
	checks := map[string]handlers.HealthChecker{
		"milvus": a.Milvus.CheckHealth,
	}
	if a.redisClient != nil {
		checks["redis"] = a.redisClient.Ping
	}

	var catalogHandler *handlers.CatalogHandler
	if a.Catalog != nil {
		catalogHandler = handlers.NewCatalogHandler(a.Catalog)
	}

	return httpiface.NewRouter(
		a.Config.Server,
		handlers.NewChatHandler(a.Engine, a.Metrics),
		handlers.NewSessionHandler(a.Store, a.Metrics),
		catalogHandler,
		handlers.NewHealthHandler(checks),
		a.Metrics,
		a.Log,
	)
}

// NewIngestor builds an ingestor over the given source, publishing events to
// Kafka when brokers are configured.
func (a *App) NewIngestor(source ingest.Source) (*ingest.Ingestor, func() error, error) {
	var publisher ingest.EventPublisher
	closer := func() error { return nil }

	if len(a.Config.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers: a.Config.Kafka.Brokers,
			Topic:   a.Config.Kafka.Topic,
		}, a.Log)
		if err != nil {
			return nil, nil, err
		}
		publisher = producer
		closer = producer.Close
	}

	return ingest.NewIngestor(source, a.Ollama, a.Index, publisher, a.Metrics, a.Log), closer, nil
}

// Close releases every connection the app holds.
func (a *App) Close() {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.Milvus != nil {
		_ = a.Milvus.Close()
	}
}

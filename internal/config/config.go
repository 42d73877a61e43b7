// Package config defines all configuration structures for KeyIP-Chat.
// No I/O or parsing logic lives here — only plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

// RedisConfig holds Redis connection parameters for the session store.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MilvusConfig holds Milvus vector-store connection parameters.
type MilvusConfig struct {
	Addr           string        `mapstructure:"addr"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	DBName         string        `mapstructure:"db_name"`
	Collection     string        `mapstructure:"collection"`
	EmbeddingDim   int           `mapstructure:"embedding_dim"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	SearchTimeout  time.Duration `mapstructure:"search_timeout"`
}

// OpenSearchConfig holds OpenSearch cluster parameters for the patent catalog.
type OpenSearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	User               string   `mapstructure:"user"`
	Password           string   `mapstructure:"password"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	PatentIndex        string   `mapstructure:"patent_index"`
}

// OllamaConfig holds the local model-server parameters used for both answer
// synthesis and embedding computation.
type OllamaConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	LLMModel       string        `mapstructure:"llm_model"`
	EmbedModel     string        `mapstructure:"embed_model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RerankerConfig holds the cross-encoder scoring service parameters.
type RerankerConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ChatConfig holds the retrieval/ranking budgets and session lifetime for the
// chat engine.  These are read once at engine construction.
type ChatConfig struct {
	RetrieverTopK int           `mapstructure:"retriever_top_k"`
	RerankerTopK  int           `mapstructure:"reranker_top_k"`
	MetadataTopK  int           `mapstructure:"metadata_top_k"`
	HistoryTTL    time.Duration `mapstructure:"history_ttl"`
	// SessionBackend selects the store implementation: "redis" | "memory".
	SessionBackend string `mapstructure:"session_backend"`
}

// KafkaConfig holds the optional ingestion-event producer parameters.
// Leaving Brokers empty disables event publication.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MinIOConfig holds the optional object-storage ingestion source.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
}

// Config is the root configuration structure for the service.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Milvus     MilvusConfig     `mapstructure:"milvus"`
	OpenSearch OpenSearchConfig `mapstructure:"opensearch"`
	Ollama     OllamaConfig     `mapstructure:"ollama"`
	Reranker   RerankerConfig   `mapstructure:"reranker"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Log        LogConfig        `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered; callers should treat any error as
// fatal and refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Milvus.Addr == "" {
		return fmt.Errorf("config: milvus.addr is required")
	}
	if c.Milvus.Collection == "" {
		return fmt.Errorf("config: milvus.collection is required")
	}
	if c.Milvus.EmbeddingDim < 1 {
		return fmt.Errorf("config: milvus.embedding_dim must be ≥ 1, got %d", c.Milvus.EmbeddingDim)
	}

	if c.Ollama.BaseURL == "" {
		return fmt.Errorf("config: ollama.base_url is required")
	}
	if c.Ollama.LLMModel == "" || c.Ollama.EmbedModel == "" {
		return fmt.Errorf("config: ollama.llm_model and ollama.embed_model are required")
	}

	switch c.Chat.SessionBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: chat.session_backend %q is invalid; expected redis|memory", c.Chat.SessionBackend)
	}
	if c.Chat.SessionBackend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when chat.session_backend is redis")
	}
	if c.Chat.RetrieverTopK < 1 {
		return fmt.Errorf("config: chat.retriever_top_k must be ≥ 1, got %d", c.Chat.RetrieverTopK)
	}
	if c.Chat.RerankerTopK < 1 || c.Chat.RerankerTopK > c.Chat.RetrieverTopK {
		return fmt.Errorf("config: chat.reranker_top_k must be in [1, retriever_top_k], got %d", c.Chat.RerankerTopK)
	}
	if c.Chat.MetadataTopK < 1 {
		return fmt.Errorf("config: chat.metadata_top_k must be ≥ 1, got %d", c.Chat.MetadataTopK)
	}
	if c.Chat.HistoryTTL <= 0 {
		return fmt.Errorf("config: chat.history_ttl must be positive, got %s", c.Chat.HistoryTTL)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

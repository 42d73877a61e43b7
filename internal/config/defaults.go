package config

import "time"

// ApplyDefaults fills every unset field of cfg with the service defaults.
// Called after unmarshalling and before validation so that a minimal config
// file (or pure env-var deployment) still yields a runnable configuration.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		// Synthesis can be slow on local models; the write timeout must
		// outlast the model request timeout.
		cfg.Server.WriteTimeout = 6 * time.Minute
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "keyipchat:"
	}

	if cfg.Milvus.DBName == "" {
		cfg.Milvus.DBName = "default"
	}
	if cfg.Milvus.Collection == "" {
		cfg.Milvus.Collection = "patent_units"
	}
	if cfg.Milvus.EmbeddingDim == 0 {
		cfg.Milvus.EmbeddingDim = 1024
	}
	if cfg.Milvus.ConnectTimeout == 0 {
		cfg.Milvus.ConnectTimeout = 10 * time.Second
	}
	if cfg.Milvus.SearchTimeout == 0 {
		cfg.Milvus.SearchTimeout = 10 * time.Second
	}

	if cfg.OpenSearch.PatentIndex == "" {
		cfg.OpenSearch.PatentIndex = "patents"
	}

	if cfg.Ollama.BaseURL == "" {
		cfg.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Ollama.RequestTimeout == 0 {
		cfg.Ollama.RequestTimeout = 5 * time.Minute
	}

	if cfg.Reranker.RequestTimeout == 0 {
		cfg.Reranker.RequestTimeout = 30 * time.Second
	}

	if cfg.Chat.RetrieverTopK == 0 {
		cfg.Chat.RetrieverTopK = 30
	}
	if cfg.Chat.RerankerTopK == 0 {
		cfg.Chat.RerankerTopK = 6
	}
	if cfg.Chat.MetadataTopK == 0 {
		cfg.Chat.MetadataTopK = 10
	}
	if cfg.Chat.HistoryTTL == 0 {
		cfg.Chat.HistoryTTL = 30 * 24 * time.Hour
	}
	if cfg.Chat.SessionBackend == "" {
		cfg.Chat.SessionBackend = "memory"
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "keyipchat.ingest.events"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

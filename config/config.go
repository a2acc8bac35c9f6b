// Package config loads configuration from environment variables and .env files.
package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the policy retrieval service.
type Config struct {
	// Storage
	DBPath  string `env:"DB_PATH" envDefault:"./data/index"`
	DocsDir string `env:"DOCS_DIR" envDefault:"./docs"`

	// AI provider
	EmbeddingHost  string `env:"EMBEDDING_HOST" envDefault:"http://localhost:11434/v1"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"embeddinggemma"`
	ScorerHost     string `env:"SCORER_HOST"`
	ScorerModel    string `env:"SCORER_MODEL"`

	// Reranker strategy: "model" or "heuristic". The model strategy
	// requires a scorer host; selection happens once at startup.
	Reranker string `env:"RERANKER" envDefault:"heuristic"`

	// Cache
	RedisAddr string        `env:"REDIS_ADDR"`
	CacheTTL  time.Duration `env:"CACHE_TTL" envDefault:"1h"`

	// Search
	TopK                int           `env:"TOP_K" envDefault:"10"`
	SimilarityThreshold float64       `env:"SIMILARITY_THRESHOLD" envDefault:"0.6"`
	SearchTimeout       time.Duration `env:"SEARCH_TIMEOUT" envDefault:"3s"`
	LocationWeight      float64       `env:"LOCATION_WEIGHT" envDefault:"0.3"`

	// Workers
	PoolSize int `env:"POOL_SIZE" envDefault:"0"` // 0 = NumCPU/2

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load loads configuration from a .env file (if present) and environment
// variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

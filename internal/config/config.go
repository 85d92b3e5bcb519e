// Package config defines the single immutable configuration value threaded
// through every constructor. There is no ambient global state; callers
// build a Config once and pass it down.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/joho/godotenv"
	"github.com/nidhogg/teamlens/internal/event"
	"github.com/nidhogg/teamlens/internal/feature"
	"github.com/nidhogg/teamlens/internal/layer"
	"github.com/nidhogg/teamlens/internal/predict"
)

// Config is the top-level configuration structure.
type Config struct {
	Retention  map[layer.Type]layer.Retention `json:"retention"`
	Feature    feature.Config                 `json:"feature"`
	Alerts     event.AlertThresholds          `json:"alerts"`
	Prediction predict.Thresholds             `json:"prediction"`
	// EventRetentionDays bounds the collector's rolling window.
	EventRetentionDays int `json:"event_retention_days"`
	// BundleCacheSize caps the orchestrator's memoized bundles.
	BundleCacheSize int             `json:"bundle_cache_size"`
	Backends        BackendConfig   `json:"backends"`
	Embedding       EmbeddingConfig `json:"embedding"`
}

// BackendConfig holds optional persistence and alert-sink backends. Empty
// values leave the corresponding backend unwired.
type BackendConfig struct {
	SQLitePath  string       `json:"sqlite_path"`
	PostgresDSN string       `json:"postgres_dsn"`
	RedisURL    string       `json:"redis_url"`
	Neo4j       Neo4jConfig  `json:"neo4j"`
	Qdrant      QdrantConfig `json:"qdrant"`
}

type Neo4jConfig struct {
	URI      string `json:"uri"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type QdrantConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// EmbeddingConfig selects the optional semantic scoring provider.
type EmbeddingConfig struct {
	Provider  string `json:"provider"` // "", "api" or "local"
	Endpoint  string `json:"endpoint"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	Dimension int    `json:"dimension"`
}

// Default returns the documented defaults for every knob.
func Default() Config {
	retention := map[layer.Type]layer.Retention{}
	for _, t := range layer.Types() {
		retention[t] = layer.DefaultRetention(t)
	}
	return Config{
		Retention:          retention,
		Feature:            feature.DefaultConfig(),
		Alerts:             event.DefaultAlertThresholds(),
		Prediction:         predict.DefaultThresholds(),
		EventRetentionDays: 90,
		BundleCacheSize:    128,
	}
}

// envVarRe matches ${VAR} and ${VAR:default} patterns.
var envVarRe = regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

// Load reads a JSON config file, substitutes environment variable
// references and overlays the result onto the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	resolved := envVarRe.ReplaceAllStringFunc(string(data), func(match string) string {
		parts := envVarRe.FindStringSubmatch(match)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})

	cfg := Default()
	if err := json.Unmarshal([]byte(resolved), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads a .env file when present and returns defaults with backend
// settings picked up from the environment.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Backends.SQLitePath = os.Getenv("TEAMLENS_SQLITE_PATH")
	cfg.Backends.PostgresDSN = os.Getenv("TEAMLENS_POSTGRES_DSN")
	cfg.Backends.RedisURL = os.Getenv("TEAMLENS_REDIS_URL")
	cfg.Backends.Neo4j = Neo4jConfig{
		URI:      os.Getenv("TEAMLENS_NEO4J_URI"),
		User:     os.Getenv("TEAMLENS_NEO4J_USER"),
		Password: os.Getenv("TEAMLENS_NEO4J_PASSWORD"),
	}
	return cfg
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type StorageConfig struct {
	Driver     string `mapstructure:"driver"` // postgres, sqlite
	SQLitePath string `mapstructure:"sqlite_path"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL         string        `mapstructure:"url"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	Timeout     time.Duration `mapstructure:"timeout"`
	FeedbackTTL time.Duration `mapstructure:"feedback_ttl"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		OutfitEvents string `mapstructure:"outfit_events"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngineConfig holds every tunable constant of the outfit engine.
type EngineConfig struct {
	Weights    ScoreWeights     `mapstructure:"weights"`
	Thresholds ReasonThresholds `mapstructure:"thresholds"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Ranking    RankingConfig    `mapstructure:"ranking"`
	Repeat     RepeatConfig     `mapstructure:"repeat"`
}

type ScoreWeights struct {
	Color         float64 `mapstructure:"color"`
	Fabric        float64 `mapstructure:"fabric"`
	Season        float64 `mapstructure:"season"`
	Occasion      float64 `mapstructure:"occasion"`
	Novelty       float64 `mapstructure:"novelty"`
	Completeness  float64 `mapstructure:"completeness"`
	RatingBonus   float64 `mapstructure:"rating_bonus"`
	RatingPenalty float64 `mapstructure:"rating_penalty"`
	ClashPenalty  float64 `mapstructure:"clash_penalty"`
}

type ReasonThresholds struct {
	Color    float64 `mapstructure:"color"`
	Clash    float64 `mapstructure:"clash"`
	Fabric   float64 `mapstructure:"fabric"`
	Season   float64 `mapstructure:"season"`
	Occasion float64 `mapstructure:"occasion"`
	Novelty  float64 `mapstructure:"novelty"`
	Rating   float64 `mapstructure:"rating"`
}

type GeneratorConfig struct {
	MaxPerSlot     int `mapstructure:"max_per_slot"`
	MaxAccessories int `mapstructure:"max_accessories"`
	MaxCandidates  int `mapstructure:"max_candidates"`
}

// Validate rejects negative limits, which would disable the enumeration cap.
func (g GeneratorConfig) Validate() error {
	for name, v := range map[string]int{
		"max_per_slot":    g.MaxPerSlot,
		"max_accessories": g.MaxAccessories,
		"max_candidates":  g.MaxCandidates,
	} {
		if v < 0 {
			return fmt.Errorf("engine.generator.%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

type RankingConfig struct {
	MaxOverlap        float64 `mapstructure:"max_overlap"`
	DefaultMaxResults int     `mapstructure:"default_max_results"`
}

type RepeatConfig struct {
	NearThreshold float64 `mapstructure:"near_threshold"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig caps API requests per owner. Requests <= 0 disables limiting.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Engine.Generator.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultEngineConfig returns the engine defaults without touching viper.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights: ScoreWeights{
			Color:         0.35,
			Fabric:        0.15,
			Season:        0.15,
			Occasion:      0.15,
			Novelty:       0.05,
			Completeness:  0.05,
			RatingBonus:   0.25,
			RatingPenalty: 0.35,
			ClashPenalty:  0.20,
		},
		Thresholds: ReasonThresholds{
			Color:    0.80,
			Clash:    0.40,
			Fabric:   0.80,
			Season:   0.90,
			Occasion: 0.90,
			Novelty:  0.50,
			Rating:   0.20,
		},
		Generator: GeneratorConfig{
			MaxPerSlot:     8,
			MaxAccessories: 1,
			MaxCandidates:  2000,
		},
		Ranking: RankingConfig{
			MaxOverlap:        0.70,
			DefaultMaxResults: 6,
		},
		Repeat: RepeatConfig{
			NearThreshold: 0.70,
		},
	}
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")

	// Storage defaults
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("storage.sqlite_path", "./data/wardrobe.db")

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", "15m")
	v.SetDefault("database.max_lifetime", "1h")
	v.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.timeout", "5s")
	v.SetDefault("redis.feedback_ttl", "10m")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topics.outfit_events", "outfit-events")

	// Auth defaults
	v.SetDefault("auth.token_ttl", "720h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Engine defaults
	engine := DefaultEngineConfig()
	v.SetDefault("engine.weights.color", engine.Weights.Color)
	v.SetDefault("engine.weights.fabric", engine.Weights.Fabric)
	v.SetDefault("engine.weights.season", engine.Weights.Season)
	v.SetDefault("engine.weights.occasion", engine.Weights.Occasion)
	v.SetDefault("engine.weights.novelty", engine.Weights.Novelty)
	v.SetDefault("engine.weights.completeness", engine.Weights.Completeness)
	v.SetDefault("engine.weights.rating_bonus", engine.Weights.RatingBonus)
	v.SetDefault("engine.weights.rating_penalty", engine.Weights.RatingPenalty)
	v.SetDefault("engine.weights.clash_penalty", engine.Weights.ClashPenalty)
	v.SetDefault("engine.thresholds.color", engine.Thresholds.Color)
	v.SetDefault("engine.thresholds.clash", engine.Thresholds.Clash)
	v.SetDefault("engine.thresholds.fabric", engine.Thresholds.Fabric)
	v.SetDefault("engine.thresholds.season", engine.Thresholds.Season)
	v.SetDefault("engine.thresholds.occasion", engine.Thresholds.Occasion)
	v.SetDefault("engine.thresholds.novelty", engine.Thresholds.Novelty)
	v.SetDefault("engine.thresholds.rating", engine.Thresholds.Rating)
	v.SetDefault("engine.generator.max_per_slot", engine.Generator.MaxPerSlot)
	v.SetDefault("engine.generator.max_accessories", engine.Generator.MaxAccessories)
	v.SetDefault("engine.generator.max_candidates", engine.Generator.MaxCandidates)
	v.SetDefault("engine.ranking.max_overlap", engine.Ranking.MaxOverlap)
	v.SetDefault("engine.ranking.default_max_results", engine.Ranking.DefaultMaxResults)
	v.SetDefault("engine.repeat.near_threshold", engine.Repeat.NearThreshold)

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"*"})
	v.SetDefault("security.rate_limit.requests", 300)
	v.SetDefault("security.rate_limit.window", "1m")
}

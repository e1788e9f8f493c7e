package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	maxKeywords = 5

	// recordAICalls is the number of sequential AI steps in record
	// assembly: summary, title and keywords, then the image.
	recordAICalls = 3
)

// Storage backends for generated images.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AI       AIConfig       `yaml:"ai"`
	Storage  StorageConfig  `yaml:"storage"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	// AIRateLimit is the sustained requests per second allowed on routes
	// that call the AI provider. Zero disables limiting.
	AIRateLimit float64 `yaml:"ai_rate_limit"`
	AIBurst     int     `yaml:"ai_burst"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AIConfig contains settings for the OpenAI-backed collaborators.
type AIConfig struct {
	APIKey              string   `yaml:"-"` // env-only, never in YAML
	ChatModel           string   `yaml:"chat_model"`
	FollowUpModel       string   `yaml:"follow_up_model"`
	EmbeddingModel      string   `yaml:"embedding_model"`
	EmbeddingDimensions int      `yaml:"embedding_dimensions"`
	TranscriptionModel  string   `yaml:"transcription_model"`
	ImageModel          string   `yaml:"image_model"`
	ImageSize           string   `yaml:"image_size"`
	SpeechModel         string   `yaml:"speech_model"`
	Voice               string   `yaml:"voice"`
	Timeout             Duration `yaml:"timeout"`
	MaxConcurrency      int      `yaml:"max_concurrency"`
	MaxKeywords         int      `yaml:"max_keywords"`
}

// StorageConfig selects where generated images are kept.
type StorageConfig struct {
	Backend      string `yaml:"backend"`
	LocalDir     string `yaml:"local_dir"`
	PublicPrefix string `yaml:"public_prefix"`

	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3UseSSL    bool   `yaml:"s3_use_ssl"`
	S3AccessKey string `yaml:"-"` // env-only
	S3SecretKey string `yaml:"-"` // env-only
}

// WorkerConfig contains background worker settings.
type WorkerConfig struct {
	// TaskRefreshInterval is how often the current week's tasks are
	// recomputed for every elder. Zero disables the worker.
	TaskRefreshInterval Duration `yaml:"task_refresh_interval"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("CARELOG_CONFIG_PATH", "config/carelog.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and an explicit config path.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(200 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
			AIRateLimit:     2,
			AIBurst:         5,
		},
		Database: DatabaseConfig{
			Path: "data/carelog.db",
		},
		AI: AIConfig{
			ChatModel:           "gpt-4o-mini",
			EmbeddingModel:      "text-embedding-3-small",
			EmbeddingDimensions: 1536,
			TranscriptionModel:  "whisper-1",
			ImageModel:          "dall-e-3",
			ImageSize:           "1024x1024",
			SpeechModel:         "tts-1",
			Voice:               "alloy",
			Timeout:             Duration(60 * time.Second),
			MaxConcurrency:      4,
			MaxKeywords:         5,
		},
		Storage: StorageConfig{
			Backend:      StorageLocal,
			LocalDir:     "data/images",
			PublicPrefix: "/static/images",
			S3Region:     "us-east-1",
			S3UseSSL:     true,
		},
		Worker: WorkerConfig{
			TaskRefreshInterval: Duration(time.Hour),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("CARELOG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	envDuration("CARELOG_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("CARELOG_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("CARELOG_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if v := os.Getenv("CARELOG_AI_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Server.AIRateLimit = f
		}
	}
	envInt("CARELOG_AI_BURST", &cfg.Server.AIBurst)

	// Database
	if v := os.Getenv("CARELOG_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// AI (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	envString("CARELOG_CHAT_MODEL", &cfg.AI.ChatModel)
	envString("CARELOG_EMBEDDING_MODEL", &cfg.AI.EmbeddingModel)
	envString("CARELOG_IMAGE_MODEL", &cfg.AI.ImageModel)
	envDuration("CARELOG_AI_TIMEOUT", &cfg.AI.Timeout)
	envInt("CARELOG_AI_MAX_CONCURRENCY", &cfg.AI.MaxConcurrency)
	envInt("CARELOG_AI_MAX_KEYWORDS", &cfg.AI.MaxKeywords)

	// Storage
	envString("CARELOG_STORAGE_BACKEND", &cfg.Storage.Backend)
	envString("CARELOG_STORAGE_LOCAL_DIR", &cfg.Storage.LocalDir)
	envString("CARELOG_S3_ENDPOINT", &cfg.Storage.S3Endpoint)
	envString("CARELOG_S3_BUCKET", &cfg.Storage.S3Bucket)
	envString("CARELOG_S3_ACCESS_KEY", &cfg.Storage.S3AccessKey)
	envString("CARELOG_S3_SECRET_KEY", &cfg.Storage.S3SecretKey)

	// Worker
	envDuration("CARELOG_TASK_REFRESH_INTERVAL", &cfg.Worker.TaskRefreshInterval)

	// Log
	envString("CARELOG_LOG_LEVEL", &cfg.Log.Level)
	envString("CARELOG_LOG_FORMAT", &cfg.Log.Format)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// validate checks that required configuration values are set.
// In dev mode (CARELOG_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate() error {
	switch c.Storage.Backend {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3Endpoint == "" || c.Storage.S3Bucket == "" {
			return errors.New("storage: s3 backend requires s3_endpoint and s3_bucket")
		}
	default:
		return fmt.Errorf("storage: unknown backend %q", c.Storage.Backend)
	}

	if c.AI.MaxConcurrency < 1 {
		return errors.New("ai: max_concurrency must be at least 1")
	}
	if c.AI.MaxKeywords < 1 || c.AI.MaxKeywords > maxKeywords {
		return fmt.Errorf("ai: max_keywords must be between 1 and %d", maxKeywords)
	}
	if c.AI.Timeout > 0 && c.Server.WriteTimeout > 0 && c.Server.WriteTimeout < recordAICalls*c.AI.Timeout {
		return fmt.Errorf("server: write_timeout %s must be at least %d x ai.timeout (%s)",
			time.Duration(c.Server.WriteTimeout), recordAICalls, time.Duration(c.AI.Timeout))
	}

	if os.Getenv("CARELOG_DEV_MODE") == "true" {
		return nil
	}

	if c.AI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/black-roland/homeassistant-yandex-speechkit/adapters/yandex"
)

// Storage drivers
const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Config represents the complete service configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	SpeechKit     SpeechKitConfig     `yaml:"speechkit"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int `yaml:"port"`
	ShutdownTimeout int `yaml:"shutdown_timeout"` // seconds
}

// SpeechKitConfig contains the cloud endpoints
type SpeechKitConfig struct {
	STTEndpoint string `yaml:"stt_endpoint"`
	TTSEndpoint string `yaml:"tts_endpoint"`
}

// HomeAssistantConfig contains the REST API used for proxied playback
type HomeAssistantConfig struct {
	URL     string `yaml:"url"`
	Token   string `yaml:"token"`
	Timeout int    `yaml:"timeout"` // seconds
}

// StorageConfig selects where config entries live
type StorageConfig struct {
	Driver        string `yaml:"driver"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// AuthConfig contains API token settings
type AuthConfig struct {
	Disabled  bool              `yaml:"disabled"`
	JWTSecret string            `yaml:"jwt_secret"`
	TokenTTL  int               `yaml:"token_ttl"` // hours
	Clients   map[string]string `yaml:"clients"`   // client_id -> client_secret
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10,
		},
		SpeechKit: SpeechKitConfig{
			STTEndpoint: yandex.DefaultSTTEndpoint,
			TTSEndpoint: yandex.DefaultTTSEndpoint,
		},
		HomeAssistant: HomeAssistantConfig{
			URL:     "http://homeassistant.local:8123",
			Timeout: 30,
		},
		Storage: StorageConfig{
			Driver:        StorageMemory,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "speechkit",
		},
		Auth: AuthConfig{
			TokenTTL: 24,
			Clients:  make(map[string]string),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// a .env file in the working directory and the environment, in that order.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) applyEnv() error {
	setString(&c.SpeechKit.STTEndpoint, "SPEECHKIT_STT_ENDPOINT")
	setString(&c.SpeechKit.TTSEndpoint, "SPEECHKIT_TTS_ENDPOINT")
	setString(&c.HomeAssistant.URL, "SPEECHKIT_HA_URL")
	setString(&c.HomeAssistant.Token, "SPEECHKIT_HA_TOKEN")
	setString(&c.Storage.Driver, "SPEECHKIT_STORAGE")
	setString(&c.Storage.MongoURI, "MONGODB_URI")
	setString(&c.Storage.MongoDatabase, "MONGODB_DATABASE")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Logging.Level, "SPEECHKIT_LOG_LEVEL")

	if err := setInt(&c.Server.Port, "PORT"); err != nil {
		return err
	}
	if err := setInt(&c.Auth.TokenTTL, "SPEECHKIT_TOKEN_TTL"); err != nil {
		return err
	}

	if v := os.Getenv("SPEECHKIT_AUTH_DISABLED"); v != "" {
		disabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SPEECHKIT_AUTH_DISABLED must be a boolean, got %q", v)
		}
		c.Auth.Disabled = disabled
	}

	if id := os.Getenv("SPEECHKIT_CLIENT_ID"); id != "" {
		if c.Auth.Clients == nil {
			c.Auth.Clients = make(map[string]string)
		}
		c.Auth.Clients[id] = os.Getenv("SPEECHKIT_CLIENT_SECRET")
	}
	return nil
}

func setString(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setInt(target *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	*target = parsed
	return nil
}

// Validate performs validation of the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout < 1 {
		return fmt.Errorf("shutdown_timeout must be at least 1 second, got %d", c.Server.ShutdownTimeout)
	}

	if c.SpeechKit.STTEndpoint == "" || c.SpeechKit.TTSEndpoint == "" {
		return fmt.Errorf("speechkit endpoints cannot be empty")
	}

	if c.HomeAssistant.Timeout < 1 {
		return fmt.Errorf("homeassistant timeout must be at least 1 second, got %d", c.HomeAssistant.Timeout)
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return fmt.Errorf("mongo_uri cannot be empty for the mongo storage driver")
		}
		if c.Storage.MongoDatabase == "" {
			return fmt.Errorf("mongo_database cannot be empty for the mongo storage driver")
		}
	default:
		return fmt.Errorf("storage driver must be %q or %q, got %q", StorageMemory, StorageMongo, c.Storage.Driver)
	}

	if !c.Auth.Disabled {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("jwt_secret cannot be empty unless auth is disabled")
		}
		if c.Auth.TokenTTL < 1 {
			return fmt.Errorf("token_ttl must be at least 1 hour, got %d", c.Auth.TokenTTL)
		}
		for id, secret := range c.Auth.Clients {
			if secret == "" {
				return fmt.Errorf("client %s has an empty secret", id)
			}
		}
	}

	if _, err := zap.ParseAtomicLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging level: %w", err)
	}

	return nil
}

// ShutdownTimeoutDuration returns the shutdown timeout as a time.Duration
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(s.ShutdownTimeout) * time.Second
}

// TimeoutDuration returns the Home Assistant timeout as a time.Duration
func (h HomeAssistantConfig) TimeoutDuration() time.Duration {
	return time.Duration(h.Timeout) * time.Second
}

// TokenTTLDuration returns the token lifetime as a time.Duration
func (a AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Hour
}

// NewLogger builds a zap logger at the configured level
func (l LoggingConfig) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, err
	}

	zapConfig := zap.NewProductionConfig()
	if l.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = level
	return zapConfig.Build()
}

package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo      MongoConfig
	Redis      RedisConfig
	Session    SessionConfig
	Cloudinary CloudinaryConfig
	Media      MediaConfig
	Geocoder   GeocoderConfig
	Kafka      KafkaConfig
	Bootstrap  BootstrapConfig

	StatsCacheTTL time.Duration `env:"STATS_CACHE_TTL, default=30s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=laporpak"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SessionConfig struct {
	Secret string        `env:"JWT_SECRET, required"`
	Cookie string        `env:"SESSION_COOKIE, default=laporpak_session"`
	TTL    time.Duration `env:"SESSION_TTL, default=168h"`
}

type CloudinaryConfig struct {
	CloudName    string `env:"CLOUDINARY_CLOUD_NAME, required"`
	APIKey       string `env:"CLOUDINARY_API_KEY, required"`
	APISecret    string `env:"CLOUDINARY_API_SECRET, required"`
	UploadFolder string `env:"UPLOAD_FOLDER, default=laporpak_reports"`
}

type MediaConfig struct {
	MaxInputBytes  int64 `env:"MEDIA_MAX_INPUT_BYTES,  default=4718592"`
	MaxOutputBytes int   `env:"MEDIA_MAX_OUTPUT_BYTES, default=524288"`
	MaxEdge        int   `env:"MEDIA_MAX_EDGE,         default=1024"`
	Workers        int   `env:"MEDIA_WORKERS,          default=0"`
}

type GeocoderConfig struct {
	URL       string        `env:"GEOCODER_URL, default=https://nominatim.openstreetmap.org/reverse"`
	UserAgent string        `env:"GEOCODER_USER_AGENT, default=laporpak-report-service/1.0"`
	CacheTTL  time.Duration `env:"GEOCODE_CACHE_TTL, default=24h"`
}

type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS"`
	Topic   string   `env:"KAFKA_TOPIC,   default=report-events"`
	Workers int      `env:"EVENT_WORKERS, default=4"`
}

// BootstrapConfig seeds an admin account at startup when Email is set.
type BootstrapConfig struct {
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
	Name     string `env:"BOOTSTRAP_ADMIN_NAME, default=Admin"`
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// EventsEnabled reports whether change events are published to Kafka.
func (c *Config) EventsEnabled() bool { return len(c.Kafka.Brokers) > 0 }

// Load reads a .env file when present and then the process environment.
// Missing secrets are reported as an error; there are no literal fallbacks.
func Load(ctx context.Context, logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("could not read .env file")
	}
	return process(ctx, envconfig.OsLookuper())
}

func process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Session.TTL <= 0:
		return errors.New("SESSION_TTL must be positive")
	case c.Media.MaxInputBytes <= 0 || c.Media.MaxOutputBytes <= 0 || c.Media.MaxEdge <= 0:
		return errors.New("media limits must be positive")
	case c.Bootstrap.Email != "" && c.Bootstrap.Password == "":
		return errors.New("BOOTSTRAP_ADMIN_PASSWORD is required with BOOTSTRAP_ADMIN_EMAIL")
	}
	return nil
}

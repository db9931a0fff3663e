package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor HOLIDAZE_CONFIG names a file.
const DefaultPath = "configs/config.yaml"

type Config struct {
	API struct {
		BaseURL         string  `yaml:"base_url" validate:"required,url"`
		APIKey          string  `yaml:"api_key"`
		TimeoutSeconds  int     `yaml:"timeout_seconds" validate:"gte=0"`
		RatePerSecond   float64 `yaml:"rate_per_second" validate:"gte=0"`
		Burst           int     `yaml:"burst" validate:"gte=0"`
		CacheTTLSeconds int     `yaml:"cache_ttl_seconds" validate:"gte=0"`
	} `yaml:"api"`

	Session struct {
		Backend   string `yaml:"backend" validate:"oneof=sqlite redis memory"`
		Path      string `yaml:"path"`
		KeyPrefix string `yaml:"key_prefix"`
	} `yaml:"session"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
	} `yaml:"redis"`

	Log struct {
		Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
		Format string `yaml:"format" validate:"oneof=console json"`
	} `yaml:"log"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port" validate:"gte=0,lte=65535"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port" validate:"gte=0,lte=65535"`
	} `yaml:"monitoring"`

	Search struct {
		PageSize int `yaml:"page_size" validate:"gte=0,lte=100"`
		MaxPages int `yaml:"max_pages" validate:"gte=0"`
	} `yaml:"search"`

	Bookings struct {
		UpcomingLimit int `yaml:"upcoming_limit" validate:"gte=0"`
	} `yaml:"bookings"`
}

// Load reads the YAML file at path, expanding ${ENV} placeholders after loading
// a .env file from the same directory. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("HOLIDAZE_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	envPath := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		// Support ${ENV_VAR} placeholders in YAML config.
		data = []byte(os.ExpandEnv(string(data)))
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Session.Backend == "sqlite" {
		if err = os.MkdirAll(filepath.Dir(cfg.Session.Path), 0o755); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://v2.api.noroff.dev"
	}
	if c.API.APIKey == "" {
		c.API.APIKey = os.Getenv("NOROFF_API_KEY")
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "sqlite"
	}
	if c.Session.Path == "" {
		c.Session.Path = "data/session.db"
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "holidaze:"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return translateValidationErrors(verrs)
		}
		return err
	}
	if c.Session.Backend == "redis" && c.Redis.Address == "" {
		return errors.New("invalid configuration: redis.address is required for the redis session backend")
	}
	return nil
}

func translateValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.API.CacheTTLSeconds) * time.Second
}

func (c *Config) SearchPageSize() int {
	if c.Search.PageSize <= 0 {
		return 20
	}
	return c.Search.PageSize
}

func (c *Config) SearchMaxPages() int {
	if c.Search.MaxPages <= 0 {
		return 15
	}
	return c.Search.MaxPages
}

func (c *Config) UpcomingLimit() int {
	if c.Bookings.UpcomingLimit <= 0 {
		return 20
	}
	return c.Bookings.UpcomingLimit
}

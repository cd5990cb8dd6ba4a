package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"licence-plate-checker/internal/plate"
)

type HTTPConfig struct {
	Host string
	Port int
	// AllowedOrigins are the browser origins of the local form app.
	AllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type ValidatorConfig struct {
	BaseURL string
	Timeout time.Duration
	// HostHeader overrides the Host sent by the dev proxy. Empty means the
	// target's host.
	HostHeader string
}

type FormConfig struct {
	Variant      plate.Variant
	HistoryLimit int
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Validator   ValidatorConfig
	Form        FormConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return FromViper(v)
}

// FromViper builds the config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	variant, err := plate.ParseVariant(v.GetString("FORM_VARIANT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:           v.GetString("HTTP_HOST"),
			Port:           v.GetInt("HTTP_PORT"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Validator: ValidatorConfig{
			BaseURL:    v.GetString("VALIDATOR_BASE_URL"),
			Timeout:    v.GetDuration("VALIDATOR_TIMEOUT"),
			HostHeader: v.GetString("PROXY_HOST_HEADER"),
		},
		Form: FormConfig{
			Variant:      variant,
			HistoryLimit: v.GetInt("HISTORY_LIMIT"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 4220
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"http://localhost:4200", "http://localhost:4220"}
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Validator.BaseURL == "" {
		cfg.Validator.BaseURL = "http://localhost:8085"
	}
	if cfg.Validator.Timeout == 0 {
		cfg.Validator.Timeout = 30 * time.Second
	}
	if cfg.Form.HistoryLimit <= 0 {
		cfg.Form.HistoryLimit = 50
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HistoryEnabled reports whether validation attempts are persisted.
func (c *Config) HistoryEnabled() bool {
	return c.DB.DSN != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Validator.BaseURL)
	if err != nil {
		return fmt.Errorf("VALIDATOR_BASE_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("VALIDATOR_BASE_URL must be an http(s) URL")
	}
	if u.Host == "" {
		return fmt.Errorf("VALIDATOR_BASE_URL has no host")
	}
	if cfg.Validator.Timeout < 0 {
		return fmt.Errorf("VALIDATOR_TIMEOUT must not be negative")
	}
	return nil
}

// Package config loads service configuration from an optional app.env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every setting of the service.
type Config struct {
	ServerAddress      string        `mapstructure:"SERVER_ADDRESS" validate:"required"`
	HTTPRequestTimeout time.Duration `mapstructure:"HTTP_REQUEST_TIMEOUT" validate:"gt=0s"`
	ShutdownTimeout    time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"gt=0s"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	UpstreamBaseURL        string        `mapstructure:"UPSTREAM_BASE_URL" validate:"required,url"`
	UpstreamUserAgent      string        `mapstructure:"UPSTREAM_USER_AGENT"`
	UpstreamPagesCount     int           `mapstructure:"UPSTREAM_PAGES_COUNT" validate:"gt=0"`
	UpstreamRequestTimeout time.Duration `mapstructure:"UPSTREAM_REQUEST_TIMEOUT" validate:"gt=0s"`
	UpstreamMaxRetries     int           `mapstructure:"UPSTREAM_MAX_RETRIES" validate:"gte=0"`
	UpstreamRetryWaitMin   time.Duration `mapstructure:"UPSTREAM_RETRY_WAIT_MIN" validate:"gte=0s"`
	UpstreamRetryWaitMax   time.Duration `mapstructure:"UPSTREAM_RETRY_WAIT_MAX" validate:"gtefield=UpstreamRetryWaitMin"`

	FetchConcurrency int           `mapstructure:"FETCH_CONCURRENCY" validate:"gt=0"`
	FetchPageTimeout time.Duration `mapstructure:"FETCH_PAGE_TIMEOUT" validate:"gt=0s"`

	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL" validate:"gt=0s"`
	CacheTTL        time.Duration `mapstructure:"CACHE_TTL" validate:"gtfield=RefreshInterval"`
	CacheBackend    string        `mapstructure:"CACHE_BACKEND" validate:"oneof=memory redis"`

	RedisAddr      string `mapstructure:"REDIS_ADDR" validate:"required_if=CacheBackend redis"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisDB        int    `mapstructure:"REDIS_DB" validate:"gte=0"`
	RedisKeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"`
}

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// defaults are applied before app.env and the environment.
var defaults = map[string]any{
	"SERVER_ADDRESS":       ":8080",
	"HTTP_REQUEST_TIMEOUT": "5s",
	"SHUTDOWN_TIMEOUT":     "10s",

	"LOG_LEVEL":  "info",
	"LOG_PRETTY": false,

	"UPSTREAM_BASE_URL":        "https://tenders.guru/api/pl/",
	"UPSTREAM_USER_AGENT":      "tenders-api/1.0",
	"UPSTREAM_PAGES_COUNT":     100,
	"UPSTREAM_REQUEST_TIMEOUT": "120s",
	"UPSTREAM_MAX_RETRIES":     3,
	"UPSTREAM_RETRY_WAIT_MIN":  "2s",
	"UPSTREAM_RETRY_WAIT_MAX":  "8s",

	"FETCH_CONCURRENCY":  4,
	"FETCH_PAGE_TIMEOUT": "360s",

	"REFRESH_INTERVAL": "30m",
	"CACHE_TTL":        "1h",
	"CACHE_BACKEND":    BackendMemory,

	"REDIS_ADDR":       "localhost:6379",
	"REDIS_PASSWORD":   "",
	"REDIS_DB":         0,
	"REDIS_KEY_PREFIX": "tenders-api:",
}

// Load reads app.env from path if present, then the environment, over defaults.
// The result is validated.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their environment variable name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("mapstructure")
	})
	return v
}

// Validate checks field constraints, including CACHE_TTL > REFRESH_INTERVAL.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value: %v)", e.Field(), ruleOf(e), e.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func ruleOf(e validator.FieldError) string {
	if e.Param() == "" {
		return e.Tag()
	}
	return e.Tag() + "=" + e.Param()
}

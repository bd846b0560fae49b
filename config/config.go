package config

import (
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

var strategies = []interface{}{"round-robin", "random", "least-conn", "least-response"}

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type RemoteConfig struct {
	Endpoints []string `mapstructure:"endpoints"`
	Token     string   `mapstructure:"token"`
	Timeout   string   `mapstructure:"timeout"`
	Strategy  string   `mapstructure:"strategy"`
}

type CircuitConfig struct {
	MaxRetries   int    `mapstructure:"max_retries"`
	Cooldown     string `mapstructure:"cooldown"`
	DisableAfter int    `mapstructure:"disable_after"`
}

type HealthCheckConfig struct {
	Interval string `mapstructure:"interval"`
	Path     string `mapstructure:"path"`
}

type LocalConfig struct {
	Dataset string `mapstructure:"dataset"`
}

type NotificationsConfig struct {
	WebhookURL    string `mapstructure:"webhook_url"`
	WebhookToken  string `mapstructure:"webhook_token"`
	RatePerMinute int    `mapstructure:"rate_per_minute"`
}

type ThresholdsConfig struct {
	Recommended int `mapstructure:"recommended"`
	Leagues     int `mapstructure:"leagues"`
	Default     int `mapstructure:"default"`
}

type MetricsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Remote        RemoteConfig        `mapstructure:"remote"`
	Circuit       CircuitConfig       `mapstructure:"circuit"`
	HealthCheck   HealthCheckConfig   `mapstructure:"health_check"`
	Local         LocalConfig         `mapstructure:"local"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Thresholds    ThresholdsConfig    `mapstructure:"thresholds"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// Load reads config.yaml from ./config or the working directory, then applies
// environment overrides such as REMOTE_TOKEN or CIRCUIT_COOLDOWN.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// default locations.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Warn("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.environment", EnvDev)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", LogLevelInfo)

	v.SetDefault("remote.endpoints", []string{"https://www.scorebat.com"})
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("remote.strategy", "round-robin")

	v.SetDefault("circuit.max_retries", 3)
	v.SetDefault("circuit.cooldown", "5m")
	v.SetDefault("circuit.disable_after", 0)

	v.SetDefault("health_check.interval", "30s")
	v.SetDefault("health_check.path", "/health")

	v.SetDefault("local.dataset", "")

	v.SetDefault("notifications.webhook_url", "")
	v.SetDefault("notifications.webhook_token", "")
	v.SetDefault("notifications.rate_per_minute", 30)

	v.SetDefault("thresholds.recommended", 3)
	v.SetDefault("thresholds.leagues", 2)
	v.SetDefault("thresholds.default", 1)

	v.SetDefault("metrics.buffer_size", 1000)
}

// RemoteTimeout, CircuitCooldown and HealthCheckInterval assume Validate passed.
func (c *Config) RemoteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Remote.Timeout)
	return d
}

func (c *Config) CircuitCooldown() time.Duration {
	d, _ := time.ParseDuration(c.Circuit.Cooldown)
	return d
}

func (c *Config) HealthCheckInterval() time.Duration {
	d, _ := time.ParseDuration(c.HealthCheck.Interval)
	return d
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Remote,
			validation.By(func(value interface{}) error {
				rc, ok := value.(RemoteConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a RemoteConfig")
				}
				return validation.ValidateStruct(&rc,
					validation.Field(&rc.Endpoints,
						validation.Required,
						validation.Length(1, 0),
						validation.Each(validation.Required, validation.By(validateEndpointURL)),
					),
					validation.Field(&rc.Timeout,
						validation.Required,
						validation.By(validatePositiveDuration),
					),
					validation.Field(&rc.Strategy,
						validation.Required,
						validation.In(strategies...),
					),
				)
			}),
		),
		validation.Field(&c.Circuit,
			validation.By(func(value interface{}) error {
				cc, ok := value.(CircuitConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a CircuitConfig")
				}
				return validation.ValidateStruct(&cc,
					validation.Field(&cc.MaxRetries, validation.Min(0)),
					validation.Field(&cc.Cooldown,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&cc.DisableAfter, validation.Min(0)),
				)
			}),
		),
		validation.Field(&c.HealthCheck,
			validation.Required,
			validation.By(func(value interface{}) error {
				hc, ok := value.(HealthCheckConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a HealthCheckConfig")
				}
				return validation.ValidateStruct(&hc,
					validation.Field(&hc.Interval,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&hc.Path,
						validation.Required,
						validation.By(validatePath),
					),
				)
			}),
		),
		validation.Field(&c.Notifications,
			validation.By(func(value interface{}) error {
				nc, ok := value.(NotificationsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a NotificationsConfig")
				}
				return validation.ValidateStruct(&nc,
					validation.Field(&nc.WebhookURL, validation.By(validateEndpointURL)),
					validation.Field(&nc.RatePerMinute, validation.Min(0)),
				)
			}),
		),
		validation.Field(&c.Thresholds,
			validation.By(func(value interface{}) error {
				tc, ok := value.(ThresholdsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ThresholdsConfig")
				}
				return validation.ValidateStruct(&tc,
					validation.Field(&tc.Recommended, validation.Min(0)),
					validation.Field(&tc.Leagues, validation.Min(0)),
					validation.Field(&tc.Default, validation.Min(0)),
				)
			}),
		),
		validation.Field(&c.Metrics,
			validation.By(func(value interface{}) error {
				mc, ok := value.(MetricsConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a MetricsConfig")
				}
				return validation.ValidateStruct(&mc,
					validation.Field(&mc.BufferSize, validation.Required, validation.Min(1)),
				)
			}),
		),
	)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	if d < 0 {
		return validation.NewError("validation_negative_duration", "must not be negative")
	}

	return nil
}

func validatePositiveDuration(value interface{}) error {
	if err := validateDuration(value); err != nil {
		return err
	}

	if d, _ := time.ParseDuration(value.(string)); d == 0 {
		return validation.NewError("validation_zero_duration", "must be greater than zero")
	}

	return nil
}

func validatePath(value interface{}) error {
	p, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if !strings.HasPrefix(p, "/") {
		return validation.NewError("validation_invalid_path", "must start with /")
	}

	return nil
}

// validateEndpointURL accepts an empty string; pair it with Required where
// the URL is mandatory.
func validateEndpointURL(value interface{}) error {
	endpointURL, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if endpointURL == "" {
		return nil
	}

	parsedURL, err := url.Parse(endpointURL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}

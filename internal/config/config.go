package config

import (
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Scan       ScanConfig       `yaml:"scan" mapstructure:"scan"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Circuit    CircuitConfig    `yaml:"circuit" mapstructure:"circuit"`
	MQTT       MQTTConfig       `yaml:"mqtt" mapstructure:"mqtt"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ScanConfig configures scan cycles.
type ScanConfig struct {
	// RadiusMeters is the nominal scan radius used when a batch carries none.
	RadiusMeters float64 `yaml:"radius_meters" mapstructure:"radius_meters"`
	IntervalSecs int     `yaml:"interval_secs" mapstructure:"interval_secs"`
	Burst        int     `yaml:"burst" mapstructure:"burst"`
	// Seed makes position fuzzing reproducible. 0 draws a random seed.
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
	// Path is a batch file or directory polled by serve.
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// RetryConfig configures retries of the scan source.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// CircuitConfig configures the breakers in front of sinks and webhooks.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// MQTTConfig configures snapshot publishing. An empty broker disables it.
type MQTTConfig struct {
	Broker      string `yaml:"broker" mapstructure:"broker"`
	ClientID    string `yaml:"client_id" mapstructure:"client_id"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	TopicPrefix string `yaml:"topic_prefix" mapstructure:"topic_prefix"`
	QoS         int    `yaml:"qos" mapstructure:"qos"`
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool {
	return strings.TrimSpace(m.Broker) != ""
}

// MonitoringConfig configures alert evaluation.
type MonitoringConfig struct {
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	DensityThreshold     float64 `yaml:"density_threshold" mapstructure:"density_threshold"`
	ChannelLoadThreshold int     `yaml:"channel_load_threshold" mapstructure:"channel_load_threshold"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("WIFISURVEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("scan.radius_meters", 200.0)
	v.SetDefault("scan.interval_secs", 30)
	v.SetDefault("scan.burst", 1)
	v.SetDefault("scan.seed", 0)
	v.SetDefault("scan.path", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)
	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "wifisurvey")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic_prefix", "wifisurvey")
	v.SetDefault("mqtt.qos", 0)
	v.SetDefault("monitoring.check_interval_secs", 60)
	v.SetDefault("monitoring.webhook_url", "")
	v.SetDefault("monitoring.density_threshold", 500.0)
	v.SetDefault("monitoring.channel_load_threshold", 10)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command depends on. mode is one of
// "analyze", "serve", or "mqtt".
func (c *Config) Validate(mode string) error {
	switch mode {
	case "analyze":
		return c.validateScan()
	case "serve":
		if err := c.validateScan(); err != nil {
			return err
		}
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return eris.Errorf("config: server.port must be > 0 and <= 65535, got %d", c.Server.Port)
		}
		if c.Scan.IntervalSecs <= 0 {
			return eris.Errorf("config: scan.interval_secs must be > 0, got %d", c.Scan.IntervalSecs)
		}
		if c.Scan.Burst <= 0 {
			return eris.Errorf("config: scan.burst must be > 0, got %d", c.Scan.Burst)
		}
		if c.Monitoring.WebhookURL != "" {
			if _, err := url.ParseRequestURI(c.Monitoring.WebhookURL); err != nil {
				return eris.Wrap(err, "config: monitoring.webhook_url")
			}
		}
		if c.MQTT.Enabled() {
			return c.Validate("mqtt")
		}
		return nil
	case "mqtt":
		if !c.MQTT.Enabled() {
			return eris.New("config: mqtt.broker is required")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return eris.Errorf("config: mqtt.qos must be 0, 1, or 2, got %d", c.MQTT.QoS)
		}
		if strings.TrimSpace(c.MQTT.TopicPrefix) == "" {
			return eris.New("config: mqtt.topic_prefix is required")
		}
		return nil
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
}

func (c *Config) validateScan() error {
	if c.Scan.RadiusMeters <= 0 {
		return eris.Errorf("config: scan.radius_meters must be > 0, got %.1f", c.Scan.RadiusMeters)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

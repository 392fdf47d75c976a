package config

import (
	"os"
	"strings"

	"codeberg.org/nmarks/creditctl/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevel = "info"

	configName    = "creditctl"
	configDir     = "/etc"
	envConfigPath = "CREDITCTL_CONFIG"
)

// Config holds the daemon configuration. Values come from defaults,
// then the TOML config file, then CREDITCTL_ environment variables,
// then command-line flags, in increasing precedence.
type Config struct {
	Scenario    string  `mapstructure:"scenario"`
	Interval    int     `mapstructure:"interval"`
	Setpoint    float64 `mapstructure:"setpoint"`
	Window      int     `mapstructure:"window"`
	Kp          float64 `mapstructure:"kp"`
	Ki          float64 `mapstructure:"ki"`
	Kd          float64 `mapstructure:"kd"`
	OutputMin   float64 `mapstructure:"output_min"`
	OutputMax   float64 `mapstructure:"output_max"`
	Monitor     bool    `mapstructure:"monitor"`
	LogLevel    string  `mapstructure:"log_level"`
	Telemetry   bool    `mapstructure:"telemetry"`
	TelemetryDB string  `mapstructure:"database"`
	Metrics     bool    `mapstructure:"metrics"`
	MetricsAddr string  `mapstructure:"metrics_addr"`
}

// Load reads configuration from all sources using the process
// arguments for flag overrides.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit command-line arguments, for callers
// and tests that do not want to depend on os.Args.
func LoadArgs(args []string) (*Config, error) {
	errFactory := errors.New()

	fs := pflag.NewFlagSet(configName, pflag.ContinueOnError)
	fs.String("scenario", "credit", "Plant to regulate: credit, thermal or lander")
	fs.Int("interval", 2, "Seconds between control ticks")
	fs.Float64("setpoint", 1.0, "Target value for the process variable")
	fs.Int("window", 30, "Filter window in seconds")
	fs.Float64("kp", 0.5, "Proportional gain")
	fs.Float64("ki", 0.1, "Integral gain")
	fs.Float64("kd", 0.05, "Derivative gain")
	fs.Float64("output-min", -1.0, "Lower output bound")
	fs.Float64("output-max", 1.0, "Upper output bound")
	fs.Bool("monitor", false, "Observe the plant without actuating")
	fs.String("log-level", DefaultLogLevel, "Log level: debug, info, warning or error")
	fs.Bool("telemetry", false, "Record tick snapshots to the telemetry database")
	fs.String("database", "/var/lib/creditctl/telemetry.db", "Telemetry database path")
	fs.Bool("metrics", false, "Expose Prometheus metrics")
	fs.String("metrics-addr", ":9090", "Prometheus listen address")
	if err := fs.Parse(args); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	for _, f := range []string{
		"scenario", "interval", "setpoint", "window", "kp", "ki", "kd",
		"output-min", "output-max", "monitor", "log-level", "telemetry",
		"database", "metrics", "metrics-addr",
	} {
		v.SetDefault(flagKey(f), fs.Lookup(f).DefValue)
	}

	v.SetEnvPrefix(strings.ToUpper(configName))
	v.AutomaticEnv()

	if path := os.Getenv(envConfigPath); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errFactory.Wrap(errors.ErrReadConfig, err)
			}
		}
	}

	// Flags set on the command line override the config file.
	fs.Visit(func(f *pflag.Flag) {
		v.Set(flagKey(f.Name), f.Value.String())
	})

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects misconfiguration at load time. Controller gains and
// bounds are validated by control.New, which owns those semantics.
func (c *Config) Validate() error {
	errFactory := errors.New()

	switch c.Scenario {
	case "credit", "thermal", "lander":
	default:
		return errFactory.WithData(errors.ErrInvalidScenario, c.Scenario)
	}
	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}
	if c.Window <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, "window must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}
	if c.Telemetry && c.TelemetryDB == "" {
		return errFactory.WithMessage(errors.ErrMissingConfig, "telemetry enabled without a database path")
	}

	return nil
}

// Debug reports whether debug logging is configured.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// Verbose reports whether info-or-lower logging is configured.
func (c *Config) Verbose() bool {
	return c.LogLevel == "debug" || c.LogLevel == "info"
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

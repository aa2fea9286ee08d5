// Package config loads reporter settings from hygieia.yaml, .env files and
// HYGIEIA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"hygieia-reporter/src/artifact"
	"hygieia-reporter/src/deploy"
	"hygieia-reporter/src/junit"
	"hygieia-reporter/src/provider"
	"hygieia-reporter/src/sonar"
)

// Config holds the reporter configuration. A nil spec means that kind of
// data is not published.
type Config struct {
	// APIURL is the collector API root, e.g. http://hygieia.local:8080/api.
	APIURL string `mapstructure:"api_url"`
	// Token is sent as "Authorization: apiToken <token>" when set.
	Token string `mapstructure:"token"`
	// NiceName is the display name of the CI instance.
	NiceName string `mapstructure:"nice_name"`
	// Timeout bounds each collector request. Zero leaves requests unbounded;
	// callers set their own deadline through the context.
	Timeout time.Duration `mapstructure:"timeout"`

	Build    *BuildSpec     `mapstructure:"build"`
	Artifact *artifact.Spec `mapstructure:"artifact"`
	Test     *junit.Spec    `mapstructure:"test"`
	Sonar    *sonar.Spec    `mapstructure:"sonar"`
	Deploy   *deploy.Spec   `mapstructure:"deploy"`

	Mirror  MirrorConfig  `mapstructure:"mirror"`
	Ledger  LedgerConfig  `mapstructure:"ledger"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// BuildSpec configures build record publishing.
type BuildSpec struct {
	PublishBuildStart bool `mapstructure:"publish_build_start"`
}

// MirrorConfig enables copying published events onto a Kafka-compatible broker.
type MirrorConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// LedgerConfig enables the Postgres publish ledger.
type LedgerConfig struct {
	DSN string `mapstructure:"dsn"`
}

// MetricsConfig enables Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
	// Textfile, when set, receives the metrics after each CLI run.
	Textfile string `mapstructure:"textfile"`
}

// TracingConfig enables OpenTelemetry spans around collector requests.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// nestedKeys are bound explicitly so they can be set from the environment
// without a config file, e.g. HYGIEIA_ARTIFACT_NAME_PATTERN.
var nestedKeys = []string{
	"build.publish_build_start",
	"artifact.directory", "artifact.name_pattern", "artifact.group", "artifact.version",
	"test.publish_test_start", "test.file_name_pattern", "test.results_directory", "test.test_type",
	"sonar.publish_build_start", "sonar.report_file",
	"deploy.directory", "deploy.pattern", "deploy.group", "deploy.version",
	"deploy.environment", "deploy.application", "deploy.publish_deploy_start",
	"mirror.brokers", "ledger.dsn", "metrics.enabled", "metrics.textfile", "tracing.enabled",
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("HYGIEIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api_url", "")
	v.SetDefault("token", "")
	v.SetDefault("nice_name", "")
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("mirror.topic", "hygieia.builds")
	v.SetDefault("metrics.addr", ":9464")

	for _, key := range nestedKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads path (or hygieia.yaml from . or ./configs when path is empty),
// then applies HYGIEIA_* environment overrides. A .env file in the working
// directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hygieia")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return LoadFromEnv()
	}

	return decode(v)
}

// LoadFromEnv loads configuration from environment variables only. Load
// falls back to it when no hygieia.yaml is found.
func LoadFromEnv() (*Config, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that would make every publish fail.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return provider.ErrNoCollectorEndpoint
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Test != nil && c.Test.TestType != "" && !slices.Contains(junit.Types, c.Test.TestType) {
		return fmt.Errorf("unknown test type %q, want one of %s", c.Test.TestType, strings.Join(junit.Types, ", "))
	}
	return nil
}

// Enabled reports whether any kind of data is configured for publishing.
func (c *Config) Enabled() bool {
	return c.Build != nil || c.Artifact != nil || c.Test != nil || c.Sonar != nil || c.Deploy != nil
}

// PublishOnStart reports whether a build record is sent when a build starts.
func (c *Config) PublishOnStart() bool {
	return c.Artifact != nil ||
		(c.Build != nil && c.Build.PublishBuildStart) ||
		(c.Test != nil && c.Test.PublishTestStart) ||
		(c.Sonar != nil && c.Sonar.PublishBuildStart) ||
		(c.Deploy != nil && c.Deploy.PublishDeployStart)
}

// Expand returns a copy with $VAR and ${VAR} placeholders in the API URL and
// token replaced from env. Unknown variables are left in place.
func (c Config) Expand(env map[string]string) Config {
	mapping := func(key string) string {
		if v, ok := env[key]; ok {
			return v
		}
		return "${" + key + "}"
	}
	c.APIURL = os.Expand(c.APIURL, mapping)
	c.Token = os.Expand(c.Token, mapping)
	return c
}

// Package config loads the compiler configuration from file, environment
// and flags
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/t77yq/bamcfg/internal/datastore"
	"github.com/t77yq/bamcfg/internal/generator"
	"github.com/t77yq/bamcfg/internal/schedule"
)

// EnvPrefix prefixes every environment override, e.g. BAMCFG_OUTPUT_DIR
const EnvPrefix = "BAMCFG"

// ErrInvalid is wrapped by every validation error
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Datastore  DatastoreConfig  `mapstructure:"datastore"`
	Output     OutputConfig     `mapstructure:"output"`
	Generation GenerationConfig `mapstructure:"generation"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
}

type DatastoreConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type OutputConfig struct {
	// Dir receives one sub-directory per node
	Dir string `mapstructure:"dir"`
	// Report is the path of the YAML run report, empty to disable
	Report string `mapstructure:"report"`
}

type GenerationConfig struct {
	Workers          int    `mapstructure:"workers"`
	CheckCommand     string `mapstructure:"check_command"`
	HostCheckCommand string `mapstructure:"host_check_command"`
}

type NotifyConfig struct {
	// NATSURL enables generation events when set
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type ScheduleConfig struct {
	Expression string `mapstructure:"expression"`
}

type MetricsConfig struct {
	// Textfile is written after every run when set
	Textfile string `mapstructure:"textfile"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("datastore.driver", "mysql")
	v.SetDefault("datastore.dsn", "")
	v.SetDefault("datastore.max_open_conns", 4)
	v.SetDefault("datastore.max_idle_conns", 2)
	v.SetDefault("datastore.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("output.dir", "/etc/centreon-engine/bam")
	v.SetDefault("output.report", "")
	v.SetDefault("generation.workers", 4)
	v.SetDefault("generation.check_command", generator.DefaultNaming().CheckCommand)
	v.SetDefault("generation.host_check_command", generator.DefaultNaming().HostCheckCommand)
	v.SetDefault("notify.nats_url", "")
	v.SetDefault("notify.subject_prefix", "bamcfg")
	v.SetDefault("schedule.expression", "0 */5 * * * *")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("log.development", false)
}

// Load reads the configuration. An explicit file must exist; otherwise
// config.yaml is looked up in ./config and /etc/bamcfg and may be absent.
// Environment variables override the file.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/bamcfg")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if !slices.Contains(datastore.Drivers, c.Datastore.Driver) {
		return fmt.Errorf("%w: datastore.driver %q is not one of %v", ErrInvalid, c.Datastore.Driver, datastore.Drivers)
	}
	if c.Datastore.DSN == "" {
		return fmt.Errorf("%w: datastore.dsn is required", ErrInvalid)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is required", ErrInvalid)
	}
	if c.Generation.Workers < 1 {
		return fmt.Errorf("%w: generation.workers must be at least 1", ErrInvalid)
	}
	if c.Generation.CheckCommand == "" {
		return fmt.Errorf("%w: generation.check_command is required", ErrInvalid)
	}
	if c.Notify.NATSURL != "" && c.Notify.SubjectPrefix == "" {
		return fmt.Errorf("%w: notify.subject_prefix is required with notify.nats_url", ErrInvalid)
	}
	if err := schedule.Validate(c.Schedule.Expression); err != nil {
		return fmt.Errorf("%w: schedule.expression: %v", ErrInvalid, err)
	}
	return nil
}

// SQL returns the datastore connection settings
func (c *Config) SQL() datastore.SQLConfig {
	return datastore.SQLConfig{
		Driver:          c.Datastore.Driver,
		DSN:             c.Datastore.DSN,
		MaxOpenConns:    c.Datastore.MaxOpenConns,
		MaxIdleConns:    c.Datastore.MaxIdleConns,
		ConnMaxLifetime: c.Datastore.ConnMaxLifetime,
	}
}

// Naming returns the engine names used by the generators
func (c *Config) Naming() generator.Naming {
	return generator.Naming{
		CheckCommand:     c.Generation.CheckCommand,
		HostCheckCommand: c.Generation.HostCheckCommand,
	}
}

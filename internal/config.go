package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type FallbackConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Dir           string   `mapstructure:"dir"`
		DefaultTables []string `mapstructure:"default_tables"`
	} `mapstructure:"storage"`

	Latency struct {
		Min time.Duration `mapstructure:"min"`
		Max time.Duration `mapstructure:"max"`
	} `mapstructure:"latency"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Server struct {
		Addr        string        `mapstructure:"addr"`
		Timeout     time.Duration `mapstructure:"timeout"`
		IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	} `mapstructure:"server"`
}

const EnvPrefix = "FALLBACKDB"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("app_name", "fallbackdb")
	v.SetDefault("storage.dir", ".mockdb-data")
	v.SetDefault("storage.default_tables", []string{
		"users", "properties", "contracts", "payments", "alerts",
		"reports", "settings", "logs", "tenants", "transactions",
	})
	v.SetDefault("latency.min", 0)
	v.SetDefault("latency.max", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", "127.0.0.1:5454")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 5*time.Minute)

	// FALLBACKDB_STORAGE_DIR overrides storage.dir, and so on.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultConfig is the configuration used without a config file, with
// FALLBACKDB_* environment overrides applied.
func DefaultConfig() (*FallbackConfig, error) {
	return decode(newViper())
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (*FallbackConfig, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*FallbackConfig, error) {
	var cfg FallbackConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Latency.Min < 0 || cfg.Latency.Max < 0 {
		return nil, fmt.Errorf("latency must not be negative")
	}
	if cfg.Latency.Max < cfg.Latency.Min {
		return nil, fmt.Errorf("latency.max %s is below latency.min %s", cfg.Latency.Max, cfg.Latency.Min)
	}
	return &cfg, nil
}

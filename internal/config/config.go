package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path          string `mapstructure:"path"`
	LogMode       bool   `mapstructure:"log_mode"`
	MaxOpenConns  int    `mapstructure:"max_open_conns"`
	MaxIdleConns  int    `mapstructure:"max_idle_conns"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms"`
}

type ReportConfig struct {
	TemplatePath    string `mapstructure:"template_path"`
	OutputDir       string `mapstructure:"output_dir"`
	EditWindowHours int    `mapstructure:"edit_window_hours"`
	SummaryMaxDates int    `mapstructure:"summary_max_dates"`
}

type RenderConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ConverterPath  string `mapstructure:"converter_path"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type NotifyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Report   ReportConfig   `mapstructure:"report"`
	Render   RenderConfig   `mapstructure:"render"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Log      LogConfig      `mapstructure:"log"`
}

var (
	appConfig *Config
	loadErr   error
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
// The first call decides the outcome; repeat calls return the same
// config or the same error.
func Load(path string) (*Config, error) {
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		// environment overrides, e.g. GFR_SERVER_PORT=9000
		v.SetEnvPrefix("GFR") // greenfield reports
		v.AutomaticEnv()

		v.SetDefault("database.max_open_conns", 10)
		v.SetDefault("database.max_idle_conns", 5)
		v.SetDefault("database.busy_timeout_ms", 5000)
		v.SetDefault("report.edit_window_hours", 48)
		v.SetDefault("report.summary_max_dates", 25)
		v.SetDefault("report.output_dir", "PDF Records")
		v.SetDefault("render.timeout_seconds", 60)

		if err := v.ReadInConfig(); err != nil {
			loadErr = fmt.Errorf("read config: %w", err)
			return
		}

		var c Config
		if err := v.Unmarshal(&c); err != nil {
			loadErr = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if loadErr != nil {
		return nil, loadErr
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

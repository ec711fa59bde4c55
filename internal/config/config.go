// Package config provides a Viper-backed application configuration and the
// line-oriented site-file parser described in the engine's external
// interface contract (switch list, gateway, community string, bypass
// overrides, access points).
package config

import (
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the ambient runtime settings: where the database lives,
// how workers are paced, and where the cooperating external processes
// (operation guard, singleton lock, site file) can be found. These are
// operational knobs, not domain data -- the domain configuration lives in
// SiteConfig, loaded separately from the site file.
type AppConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	SiteFile     string `mapstructure:"site_file"`
	GuardFile    string `mapstructure:"guard_file"`
	LockFile     string `mapstructure:"lock_file"`

	PollInterval     time.Duration `mapstructure:"poll_interval"`
	FlowTick         time.Duration `mapstructure:"flow_tick"`
	FlowRetention    time.Duration `mapstructure:"flow_retention"`
	NameResolverTick time.Duration `mapstructure:"name_resolver_tick"`

	// NameResolverCommand is the external NetBIOS scanner argv, e.g.
	// ["nbtscan", "-q", "10.0.0.0/24"]. Empty disables the name resolver.
	NameResolverCommand []string `mapstructure:"name_resolver_command"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	MetricsAddr string `mapstructure:"metrics_addr"`
	QueryAddr   string `mapstructure:"query_addr"`

	// Version is the running build's version string, compared against
	// the database's recorded schema version on startup.
	Version string `mapstructure:"version"`
}

// Default returns the baseline AppConfig used when no configuration file
// or environment overrides are present.
func Default() AppConfig {
	return AppConfig{
		DatabasePath:     "topolink.db",
		SiteFile:         "topolink.conf",
		GuardFile:        "topolink.guard",
		LockFile:         "topolink.lock",
		PollInterval:     60 * time.Second,
		FlowTick:         time.Second,
		FlowRetention:    300 * time.Second,
		NameResolverTick: 5 * time.Minute,
		LogLevel:         "info",
		LogFormat:        "json",
		MetricsAddr:      ":9540",
		QueryAddr:        ":9541",
		Version:          "dev",
	}
}

// Load builds Viper with the conventional search path (an optional
// explicit path, then ./topolink.yaml, then environment variables
// prefixed TOPOLINK_) and unmarshals it onto the default AppConfig.
func Load(explicitPath string) (*viper.Viper, AppConfig, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("topolink")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("TOPOLINK")
	v.AutomaticEnv()

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return v, cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return v, cfg, err
	}

	applyDefaults(&cfg)
	return v, cfg, nil
}

// applyDefaults fills in zero-valued fields Viper left untouched because
// neither the file nor the environment set them.
func applyDefaults(cfg *AppConfig) {
	d := Default()
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = d.DatabasePath
	}
	if cfg.SiteFile == "" {
		cfg.SiteFile = d.SiteFile
	}
	if cfg.GuardFile == "" {
		cfg.GuardFile = d.GuardFile
	}
	if cfg.LockFile == "" {
		cfg.LockFile = d.LockFile
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = d.PollInterval
	}
	if cfg.FlowTick == 0 {
		cfg.FlowTick = d.FlowTick
	}
	if cfg.FlowRetention == 0 {
		cfg.FlowRetention = d.FlowRetention
	}
	if cfg.Version == "" {
		cfg.Version = d.Version
	}
	if cfg.NameResolverTick == 0 {
		cfg.NameResolverTick = d.NameResolverTick
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = d.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = d.LogFormat
	}
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = d.MetricsAddr
	}
	if cfg.QueryAddr == "" {
		cfg.QueryAddr = d.QueryAddr
	}
}

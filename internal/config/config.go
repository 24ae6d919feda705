// Package config loads the fhiroas command configuration from flags,
// FHIROAS_ environment variables and an optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Gobd/fhiroas/openapi"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	KeyCapability    = "capability"
	KeyDefinitions   = "definitions"
	KeyOutput        = "output"
	KeyFormat        = "format"
	KeyEnhance       = "enhance"
	KeyMaxChainDepth = "max_chain_depth"
	KeyListen        = "listen"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyPackages      = "packages"
)

// EnvPrefix prefixes every environment variable, as in FHIROAS_ENHANCE.
const EnvPrefix = "FHIROAS"

var (
	ErrNoCapability = errors.New("capability statement path is required")
	ErrFormat       = errors.New("format must be json or yaml")
	ErrLogFormat    = errors.New("log format must be console or json")
)

type Config struct {
	Capability    string            `mapstructure:"capability"`
	Definitions   []string          `mapstructure:"definitions"`
	Output        string            `mapstructure:"output"`
	Format        string            `mapstructure:"format"`
	Enhance       bool              `mapstructure:"enhance"`
	MaxChainDepth int               `mapstructure:"max_chain_depth"`
	Listen        string            `mapstructure:"listen"`
	LogLevel      string            `mapstructure:"log_level"`
	LogFormat     string            `mapstructure:"log_format"`
	Packages      []openapi.Package `mapstructure:"packages"`
}

// New returns a viper instance with defaults and environment binding set
// up. Callers bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyFormat, "json")
	v.SetDefault(KeyEnhance, false)
	v.SetDefault(KeyMaxChainDepth, openapi.DefaultMaxChainDepth)
	v.SetDefault(KeyListen, ":8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	// Keys without a default are only seen by Unmarshal when bound.
	for _, k := range []string{KeyCapability, KeyDefinitions, KeyOutput} {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the config file, if one is given, and decodes v.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings shared by every command.
func (c *Config) Validate() error {
	if c.Capability == "" {
		return ErrNoCapability
	}
	switch c.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("%w, got %q", ErrFormat, c.Format)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w, got %q", ErrLogFormat, c.LogFormat)
	}
	if c.MaxChainDepth < 0 {
		return fmt.Errorf("max chain depth must not be negative, got %d", c.MaxChainDepth)
	}
	return nil
}

// CompilerOptions returns the compiler settings carried by c.
func (c *Config) CompilerOptions() openapi.Options {
	return openapi.Options{
		Enhance:       c.Enhance,
		MaxChainDepth: c.MaxChainDepth,
		Packages:      c.Packages,
	}
}

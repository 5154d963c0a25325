package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Output
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=xlsx csv"`
	DisplayLimit int    `mapstructure:"display_limit" yaml:"display_limit" validate:"min=0"`

	// Input
	InputEncoding string   `mapstructure:"input_encoding" yaml:"input_encoding" validate:"oneof=latin1 utf8"`
	PreviewRows   int      `mapstructure:"preview_rows" yaml:"preview_rows" validate:"min=0"`
	DateLayouts   []string `mapstructure:"date_layouts" yaml:"date_layouts"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogJSON  bool   `mapstructure:"log_json" yaml:"log_json"`

	// HTTP shell
	ServeAddr   string `mapstructure:"serve_addr" yaml:"serve_addr" validate:"required"`
	MaxUploadMB int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" validate:"min=1"`
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		OutputDir:     ".",
		OutputFormat:  "xlsx",
		DisplayLimit:  50,
		InputEncoding: "latin1",
		PreviewRows:   5,
		DateLayouts:   []string{},
		LogLevel:      "info",
		ServeAddr:     ":8080",
		MaxUploadMB:   32,
	}
}

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultPath returns ~/.ews/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ews", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ews/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EWS")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("display_limit", d.DisplayLimit)
	v.SetDefault("input_encoding", d.InputEncoding)
	v.SetDefault("preview_rows", d.PreviewRows)
	v.SetDefault("date_layouts", d.DateLayouts)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_json", d.LogJSON)
	v.SetDefault("serve_addr", d.ServeAddr)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".ews"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Package config loads catalog settings from an optional YAML file, an
// optional .env file and LIBCAT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "LIBCAT"

// Default file locations, relative to the working directory.
const (
	DefaultConfigFile = "library.yml"
	DefaultEnvFile    = "library.env"
)

// Config defines the structure of the configuration file.
type Config struct {
	Backend      string `yaml:"backend" envconfig:"BACKEND" validate:"oneof=siser legacy sqlite bolt"`
	DataFile     string `yaml:"data_file" envconfig:"DATA_FILE" validate:"required"`
	LoanDays     int    `yaml:"loan_days" envconfig:"LOAN_DAYS" validate:"min=1,max=365"`
	LogFile      string `yaml:"log_file" envconfig:"LOG_FILE"`
	LogLevel     string `yaml:"log_level" envconfig:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	IsProduction bool   `yaml:"is_production" envconfig:"IS_PRODUCTION"`
}

var validate = validator.New()

// DefaultDataFile returns the data file used when none is configured.
func DefaultDataFile(backend string) string {
	switch backend {
	case "legacy":
		return "library_data.txt"
	case "sqlite":
		return "library.db"
	case "bolt":
		return "library.bolt"
	default:
		return "library_data.rec"
	}
}

// LoadFile decodes the YAML file at path into cfg. A missing file is not
// an error.
func LoadFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	yd := yaml.NewDecoder(file)
	if err := yd.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadEnvs applies LIBCAT_* environment variables over cfg.
func LoadEnvs(cfg *Config) error {
	return envconfig.Process(EnvPrefix, cfg)
}

// Init fills defaults for values that are still empty and validates.
func Init(cfg *Config) error {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if cfg.Backend == "" {
		cfg.Backend = "siser"
	}
	if cfg.DataFile == "" {
		cfg.DataFile = DefaultDataFile(cfg.Backend)
	}
	if cfg.LoanDays == 0 {
		cfg.LoanDays = 14
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load builds the configuration from configFile, envFile and the
// environment. Either file may be absent.
func Load(configFile, envFile string) (*Config, error) {
	cfg := &Config{LogFile: "library.log"}

	if err := LoadFile(configFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to load configurations from file: %w", err)
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to set environment configurations: %w", err)
	}

	if err := LoadEnvs(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configurations from environment: %w", err)
	}

	if err := Init(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

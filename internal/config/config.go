package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// StrategyOverride tunes one strategy away from its built-in defaults
type StrategyOverride struct {
	Strategy         string   `yaml:"strategy" validate:"required,oneof=balanced preference roundrobin random annealing genetic"`
	Seed             *int64   `yaml:"seed,omitempty"`
	PreferenceWeight *float64 `yaml:"preferenceWeight,omitempty" validate:"omitnil,gte=0"`
	BalanceWeight    *float64 `yaml:"balanceWeight,omitempty" validate:"omitnil,gte=0"`
	AvoidPenalty     *float64 `yaml:"avoidPenalty,omitempty" validate:"omitnil,gte=0"`
	MaxIterations    *int     `yaml:"maxIterations,omitempty" validate:"omitnil,min=1"`
	StallLimit       *int     `yaml:"stallLimit,omitempty" validate:"omitnil,min=1"`
	PopulationSize   *int     `yaml:"populationSize,omitempty" validate:"omitnil,min=2"`
	Generations      *int     `yaml:"generations,omitempty" validate:"omitnil,min=1"`
	MutationRate     *float64 `yaml:"mutationRate,omitempty" validate:"omitnil,gt=0,lte=1"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL       string             `yaml:"databaseURL" validate:"required"`
	DefaultProgram    string             `yaml:"defaultProgram,omitempty"`
	StrategyOverrides []StrategyOverride `yaml:"strategyOverrides,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from groupwheel_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and rejects duplicate
// strategy overrides
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	seen := make(map[string]bool)
	for i, override := range cfg.StrategyOverrides {
		if seen[override.Strategy] {
			return fmt.Errorf("duplicate override for strategy %q in strategyOverrides[%d]", override.Strategy, i)
		}
		seen[override.Strategy] = true
	}

	return nil
}

// findConfigFile searches for groupwheel_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "groupwheel_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}

package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"brainlib/m"
	"gopkg.in/yaml.v3"
)

// Config holds training configuration
type Config struct {
	Name         string  `yaml:"name"`
	Architecture []int   `yaml:"architecture"`
	Activator    string  `yaml:"activator"`
	DataPath     string  `yaml:"data"`
	OutputDir    string  `yaml:"output"`
	Format       string  `yaml:"format"`
	Accuracy     float64 `yaml:"accuracy"`
	Momentum     float64 `yaml:"momentum"`
	BlockSize    int     `yaml:"blockSize"`
	ErrorMemory  int     `yaml:"errorMemory"`
	TargetError  float64 `yaml:"targetError"`
	MaxBlocks    int     `yaml:"maxBlocks"`
	LogEvery     int     `yaml:"logEvery"`
	Normalize    bool    `yaml:"normalize"`
	ExportJSON   bool    `yaml:"exportJSON"`
}

// DefaultConfig mirrors the library defaults.
func DefaultConfig() Config {
	oc := m.DefaultOptimizerConfig()
	return Config{
		Architecture: []int{1, 8, 1},
		Activator:    "logistic",
		OutputDir:    ".",
		Format:       "plain",
		Accuracy:     oc.Accuracy,
		Momentum:     oc.Momentum,
		BlockSize:    oc.BlockSize,
		ErrorMemory:  10,
		TargetError:  0.001,
		MaxBlocks:    100000,
		LogEvery:     1000,
	}
}

// LoadConfig overlays a YAML file on top of DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML.
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ParseArchitecture parses architecture string into slice of integers
func ParseArchitecture(archStr string) ([]int, error) {
	archParts := strings.Fields(strings.ReplaceAll(archStr, ",", " "))
	arch := make([]int, len(archParts))
	for i, s := range archParts {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		arch[i] = n
	}
	return arch, nil
}

// OptimizerConfig extracts the optimizer knobs.
func (c *Config) OptimizerConfig() m.OptimizerConfig {
	return m.OptimizerConfig{Accuracy: c.Accuracy, Momentum: c.Momentum, BlockSize: c.BlockSize}
}

// NetworkConfig turns the architecture into a network description.
func (c *Config) NetworkConfig() (m.Config, error) {
	if len(c.Architecture) < 2 {
		return m.Config{}, &m.ConstructionError{Field: "architecture", Value: len(c.Architecture),
			Reason: "must have at least 2 layers (input and output)"}
	}
	act, err := m.ParseActivator(c.Activator)
	if err != nil {
		return m.Config{}, err
	}
	last := len(c.Architecture) - 1
	return m.Config{
		Name:               c.Name,
		InputNum:           c.Architecture[0],
		HiddenLayerNeurons: append([]int{}, c.Architecture[1:last]...),
		OutputNum:          c.Architecture[last],
		Activator:          act,
		Optimizer:          c.OptimizerConfig(),
	}, nil
}

// ValidateConfig validates training configuration
func ValidateConfig(config *Config) error {
	if len(config.Architecture) < 2 {
		return &m.ConstructionError{Field: "architecture", Value: len(config.Architecture),
			Reason: "must have at least 2 layers (input and output)"}
	}
	for i, n := range config.Architecture {
		if n < 1 {
			return &m.ConstructionError{Field: fmt.Sprintf("architecture[%d]", i), Value: n, Reason: "must be at least 1"}
		}
	}
	if err := config.OptimizerConfig().Validate(); err != nil {
		return err
	}
	if config.ErrorMemory < 0 {
		return &m.ConfigurationError{Field: "errorMemory", Value: float64(config.ErrorMemory), Reason: "cannot be lower than zero"}
	}
	if _, err := m.ParseActivator(config.Activator); err != nil {
		return err
	}
	if _, err := m.ParseFormat(config.Format); err != nil {
		return err
	}
	return nil
}

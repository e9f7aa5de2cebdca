package config

import (
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Mode selects how a variable's declared type is compared with its initializer.
type Mode string

const (
	// ModeStrict requires the two instances to strong-compare once wildcard
	// and free constraint slots have been filled from the declared type.
	ModeStrict Mode = "strict"
	// ModeLax only requires them to weak-compare.
	ModeLax Mode = "lax"
)

// Severity of unreachable-code findings.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Config is the top-level avalon.yaml configuration.
type Config struct {
	// Avalon is an optional semver constraint on LanguageVersion (e.g. ">= 0.3").
	Avalon string `yaml:"avalon,omitempty"`

	// Mode is the variable comparison policy. Defaults to strict.
	Mode Mode `yaml:"mode,omitempty"`

	// Unreachable decides whether unreachable declarations stop checking.
	// Defaults to warning.
	Unreachable Severity `yaml:"unreachable,omitempty"`

	// Trace logs program order, imports and specializations.
	Trace bool `yaml:"trace,omitempty"`

	// MaxSpecializationDepth bounds nested generic instantiation.
	MaxSpecializationDepth int `yaml:"max_specialization_depth,omitempty"`
}

// Default returns the configuration used when no avalon.yaml is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeStrict
	}
	if c.Unreachable == "" {
		c.Unreachable = SeverityWarning
	}
	if c.MaxSpecializationDepth == 0 {
		c.MaxSpecializationDepth = DefaultMaxSpecializationDepth
	}
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and the language version constraint.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeStrict, ModeLax:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeStrict, ModeLax, c.Mode)
	}
	switch c.Unreachable {
	case SeverityWarning, SeverityError:
	default:
		return fmt.Errorf("unreachable must be %q or %q, got %q", SeverityWarning, SeverityError, c.Unreachable)
	}
	if c.MaxSpecializationDepth < 0 {
		return fmt.Errorf("max_specialization_depth must be positive, got %d", c.MaxSpecializationDepth)
	}
	if c.Avalon != "" {
		constraint, err := semver.NewConstraint(c.Avalon)
		if err != nil {
			return fmt.Errorf("avalon: invalid version constraint %q: %w", c.Avalon, err)
		}
		if !constraint.Check(semver.MustParse(LanguageVersion)) {
			return fmt.Errorf("avalon: checker implements %s, project requires %s", LanguageVersion, c.Avalon)
		}
	}
	return nil
}

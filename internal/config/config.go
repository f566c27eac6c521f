package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mcncl/pojotyper/internal/models"
	"github.com/mcncl/pojotyper/internal/naming"
)

// Naming engines
const (
	EngineDefault = "default"
	EngineStrcase = "strcase"
)

// Config represents the complete configuration for pojotyper
type Config struct {
	Style       string            `yaml:"style"`
	Mode        string            `yaml:"mode"`
	Package     string            `yaml:"package"`
	RootName    string            `yaml:"root_name"`
	Naming      NamingConfig      `yaml:"naming"`
	Formatting  FormattingConfig  `yaml:"formatting"`
	Output      OutputConfig      `yaml:"output"`
	Collections CollectionsConfig `yaml:"collections"`
	Dev         DevConfig         `yaml:"dev"`
}

// NamingConfig controls class and field naming
type NamingConfig struct {
	Engine         string            `yaml:"engine"`
	ObjectSuffixes []string          `yaml:"object_suffixes"`
	FieldMappings  map[string]string `yaml:"field_mappings"`
}

// FormattingConfig controls code formatting options
type FormattingConfig struct {
	Enabled     bool `yaml:"enabled"`
	IndentWidth int  `yaml:"indent_width"`
	UseTabs     bool `yaml:"use_tabs"`
}

// OutputConfig controls where generated code goes
type OutputConfig struct {
	// Dir is the target directory in per-class mode and the target file in combined mode.
	Dir string `yaml:"dir"`
}

// CollectionsConfig locates the saved document store
type CollectionsConfig struct {
	Path string `yaml:"path"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Style:    models.Immutable.String(),
		Mode:     models.Combined.String(),
		RootName: "Root",
		Naming: NamingConfig{
			Engine:        EngineDefault,
			FieldMappings: make(map[string]string),
		},
		Formatting: FormattingConfig{
			Enabled:     true,
			IndentWidth: 4,
			UseTabs:     false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Naming.FieldMappings == nil {
		cfg.Naming.FieldMappings = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFileFrom(currentDir)
}

func findConfigFileFrom(dir string) string {
	configNames := []string{".pojotyper.yml", ".pojotyper.yaml", "pojotyper.yml", "pojotyper.yaml"}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(dir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(dir)
		if parentDir == dir {
			break
		}
		dir = parentDir
	}

	return ""
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	if _, ok := models.ParseStyle(c.Style); !ok {
		return fmt.Errorf("unknown style %q (want record, class or lombok)", c.Style)
	}
	if _, ok := models.ParseMode(c.Mode); !ok {
		return fmt.Errorf("unknown mode %q (want combined or per-class)", c.Mode)
	}
	switch c.Naming.Engine {
	case "", EngineDefault, EngineStrcase:
	default:
		return fmt.Errorf("unknown naming engine %q (want default or strcase)", c.Naming.Engine)
	}
	if c.Formatting.IndentWidth < 0 || c.Formatting.IndentWidth > 16 {
		return fmt.Errorf("indent_width must be between 0 and 16, got %d", c.Formatting.IndentWidth)
	}
	return nil
}

// StyleValue returns the parsed style, defaulting to records.
func (c *Config) StyleValue() models.Style {
	s, _ := models.ParseStyle(c.Style)
	return s
}

// ModeValue returns the parsed mode, defaulting to combined.
func (c *Config) ModeValue() models.Mode {
	m, _ := models.ParseMode(c.Mode)
	return m
}

// NamingPolicy builds the naming policy selected by the naming section.
func (c *Config) NamingPolicy() naming.Policy {
	if c.Naming.Engine == EngineStrcase {
		return naming.NewStrcase(c.Naming.ObjectSuffixes)
	}
	return naming.NewHeuristic(c.Naming.ObjectSuffixes)
}

// CollectionsPath returns the store location, defaulting to the user config directory.
func (c *Config) CollectionsPath() (string, error) {
	if c.Collections.Path != "" {
		return c.Collections.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "pojotyper", "collections.json"), nil
}

// Overrides holds values given on the command line. Empty strings and nil
// pointers mean "not set".
type Overrides struct {
	Style    string
	Mode     string
	Package  string
	RootName string
	Output   string
	NoFormat bool
	Debug    bool
}

// ApplyOverrides merges CLI values into the config; set values win.
func (c *Config) ApplyOverrides(o Overrides) error {
	if o.Style != "" {
		c.Style = o.Style
	}
	if o.Mode != "" {
		c.Mode = o.Mode
	}
	if o.Package != "" {
		c.Package = o.Package
	}
	if o.RootName != "" {
		c.RootName = o.RootName
	}
	if o.Output != "" {
		c.Output.Dir = o.Output
	}
	if o.NoFormat {
		c.Formatting.Enabled = false
	}
	if o.Debug {
		c.Dev.Debug = true
	}
	return c.Validate()
}

// LoadConfigWithCLI loads the config file (explicit path, else discovered, else
// defaults) and applies CLI overrides on top.
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = FindConfigFile()
	}
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if err := cfg.ApplyOverrides(o); err != nil {
		return nil, err
	}
	return cfg, nil
}

package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/toyz/repomap/internal/errors"
	"github.com/toyz/repomap/internal/loader"
	"github.com/toyz/repomap/internal/processor"
	"github.com/toyz/repomap/internal/utils"
)

const (
	// ConfigFileName is looked up in the working directory
	ConfigFileName = ".repomap.yaml"

	// EnvPrefix prefixes environment overrides, e.g. REPOMAP_INTERFACE
	EnvPrefix = "REPOMAP"
)

// Config holds the configuration for a generation run
type Config struct {
	// Dir is the directory package patterns are resolved from
	Dir string `mapstructure:"dir" yaml:"dir,omitempty"`

	// Patterns are the package patterns to load
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`

	// Annotation is the canonical name of the marker annotation
	Annotation string `mapstructure:"annotation" yaml:"annotation"`

	// Interface is the tracked generic interface. A leading "./" is
	// resolved against the module path.
	Interface string `mapstructure:"interface" yaml:"interface"`

	// Output is the directory the artifact is written below. A relative
	// path is resolved against Dir.
	Output string `mapstructure:"output" yaml:"output"`

	// Resource is the artifact's name relative to Output
	Resource string `mapstructure:"resource" yaml:"resource"`

	// Qualifier is "path" or "name"
	Qualifier string `mapstructure:"qualifier" yaml:"qualifier"`

	// Tests includes _test.go files
	Tests bool `mapstructure:"tests" yaml:"tests"`

	// LogLevel is silent, error, warn, info, verbose or debug
	LogLevel string `mapstructure:"log-level" yaml:"log-level"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		Dir:        ".",
		Patterns:   []string{"./..."},
		Annotation: processor.DefaultAnnotation,
		Output:     ".",
		Resource:   processor.DefaultResourceName,
		Qualifier:  loader.QualifyPath.String(),
		LogLevel:   utils.DiagnosticInfo.String(),
	}
}

// OutputDir returns Output, resolved against Dir when relative
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.Output) || c.Dir == "" {
		return c.Output
	}
	return filepath.Join(c.Dir, c.Output)
}

// DiagnosticLevel returns the parsed LogLevel
func (c *Config) DiagnosticLevel() (utils.DiagnosticLevel, error) {
	return utils.ParseDiagnosticLevel(c.LogLevel)
}

// configKeys maps config keys to the flags that override them
var configKeys = []string{"dir", "patterns", "annotation", "interface", "output", "resource", "qualifier", "tests", "log-level"}

// LoadConfig merges defaults, the config file, REPOMAP_* environment
// variables and changed flags, in increasing order of precedence. An
// explicit configFile must exist; the default one is optional.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("dir", defaults.Dir)
	v.SetDefault("patterns", defaults.Patterns)
	v.SetDefault("annotation", defaults.Annotation)
	v.SetDefault("interface", defaults.Interface)
	v.SetDefault("output", defaults.Output)
	v.SetDefault("resource", defaults.Resource)
	v.SetDefault("qualifier", defaults.Qualifier)
	v.SetDefault("tests", defaults.Tests)
	v.SetDefault("log-level", defaults.LogLevel)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".repomap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(describeConfig(configFile), "read", err)
		}
	}

	if flags != nil {
		for _, key := range configKeys {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.WrapConfigurationError(key, "bind", err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapConfigurationError(describeConfig(configFile), "decode", err)
	}
	return cfg, nil
}

func describeConfig(configFile string) string {
	if configFile == "" {
		return ConfigFileName
	}
	return configFile
}

// Validate checks the configuration before a run
func (c *Config) Validate() error {
	if c.Interface == "" {
		return errors.ConfigurationError("interface", "no tracked interface set").
			WithSuggestions(
				"Pass --interface with the generic repository interface, e.g. ./repository.CrudRepository",
				fmt.Sprintf("Or set 'interface' in %s", ConfigFileName),
			)
	}
	if c.Annotation == "" {
		return errors.ConfigurationError("annotation", "no marker annotation set")
	}
	if _, err := loader.ParseQualifier(c.Qualifier); err != nil {
		return errors.WrapConfigurationError("qualifier", "parse", err)
	}
	if _, err := (processor.DirDestination{Root: c.OutputDir()}).Path(c.Resource); err != nil {
		return errors.WrapConfigurationError("resource", "validate", err)
	}
	if _, err := c.DiagnosticLevel(); err != nil {
		return errors.WrapConfigurationError("log-level", "parse", err)
	}
	return nil
}

// WriteConfig writes cfg as YAML. An existing file is only replaced when
// force is set.
func WriteConfig(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.ConfigurationError(path, "file already exists").
				WithSuggestion("Use --force to overwrite it")
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapConfigurationError(path, "encode", err)
	}

	header := []byte("# repomap configuration. Environment variables prefixed with " + EnvPrefix + "_ and flags override these values.\n")
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapFileSystemError("create", dir, err)
		}
	}
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return errors.WrapFileSystemError("write", path, err)
	}
	return nil
}

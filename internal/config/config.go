// Package config loads and validates the trac2md YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
)

// Config represents the application configuration.
type Config struct {
	Trac        TracConfig        `yaml:"trac"`
	Links       LinksConfig       `yaml:"links"`
	Output      OutputConfig      `yaml:"output"`
	Ignore      []string          `yaml:"ignore,omitempty"`
	Preprocess  PreprocessConfig  `yaml:"preprocess"`
	Code        CodeConfig        `yaml:"code"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Logging     LoggingConfig     `yaml:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Notify      NotifyConfig      `yaml:"notify"`
	Sync        SyncConfig        `yaml:"sync"`
	Report      ReportConfig      `yaml:"report"`
}

// TracConfig locates the Trac environment to read from.
type TracConfig struct {
	Environment string `yaml:"environment"`
}

// LinksConfig holds the URL templates used when rewriting Trac references.
type LinksConfig struct {
	Main      string        `yaml:"main"` // ticket/, report/ and browser/ live below this
	Docs      string        `yaml:"docs"` // target for source:docs/ references
	Code      string        `yaml:"code"` // target for log: references
	Wiki      string        `yaml:"wiki"`
	CamelCase CamelCaseMode `yaml:"camel_case,omitempty"`
}

// OutputConfig controls where and how converted pages are written.
type OutputConfig struct {
	Directory   string    `yaml:"directory"`
	FrontMatter bool      `yaml:"front_matter"`
	Git         GitConfig `yaml:"git"`
}

// GitConfig enables committing the output directory after a run.
type GitConfig struct {
	Commit      bool   `yaml:"commit"`
	Message     string `yaml:"message,omitempty"`
	AuthorName  string `yaml:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email,omitempty"`
}

// PreprocessConfig lists macros removed before conversion.
type PreprocessConfig struct {
	StripMacros []string `yaml:"strip_macros"`
}

// CodeConfig controls code block handling.
type CodeConfig struct {
	HTML HTMLMode `yaml:"html,omitempty"`
}

// AttachmentsConfig controls attachment copying.
type AttachmentsConfig struct {
	CopyUnreferenced bool `yaml:"copy_unreferenced"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// MetricsConfig enables Prometheus textfile export after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// NotifyConfig enables NATS page events.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// SyncConfig controls repeated runs of the sync command.
type SyncConfig struct {
	Interval  time.Duration `yaml:"interval,omitempty"`
	StateFile string        `yaml:"state_file,omitempty"`
}

// ReportConfig enables a machine readable run report.
type ReportConfig struct {
	JSON string `yaml:"json,omitempty"`
}

// Load reads configuration from the specified file, expanding ${VAR}
// references and applying defaults. It does not validate: callers apply
// command line overrides first and then call Validate.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				WithCause(err).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			Fatal().
			WithContext("path", configPath).
			Build()
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Default()
	example.Trac.Environment = "/srv/trac/project"
	example.Links = LinksConfig{
		Main:      "https://trac.example.org/",
		Docs:      "https://docs.example.org/",
		Code:      "https://code.example.org/log/",
		Wiki:      "https://trac.example.org/wiki/",
		CamelCase: CamelCaseKnown,
	}
	example.Output.Directory = "./wiki-md"
	example.Ignore = []string{"Trac*", "WikiStart", "InterMapTxt", "SandBox"}

	data, err := yaml.Marshal(example)
	if err != nil {
		return errors.InternalError("failed to marshal config").WithCause(err).Build()
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

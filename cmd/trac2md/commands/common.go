// Package commands implements the trac2md command line.
package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/trac2md/internal/config"
	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
)

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"trac2md.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Convert   ConvertCmd   `cmd:"" help:"Convert wiki pages modified since a date"`
	Page      PageCmd      `cmd:"" help:"Convert a single wiki page"`
	Sync      SyncCmd      `cmd:"" help:"Keep the output in sync with the Trac environment"`
	Init      InitCmd      `cmd:"" help:"Initialize a new configuration file"`
	Visualize VisualizeCmd `cmd:"" help:"Visualize the conversion pipeline (text, mermaid, dot, json)"`
}

// AfterApply runs after flag parsing and installs the bootstrap logger used
// until a configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(config.NewLogger(os.Stderr, config.LoggingConfig{}, c.Verbose))
	return nil
}

// Target overrides the environment and output directory of the configuration.
// Both must be given together.
type Target struct {
	Environment string `short:"e" help:"Trac environment directory (overrides trac.environment)" type:"path"`
	Output      string `short:"o" help:"Output directory (overrides output.directory)" type:"path"`
}

func (t Target) apply(cfg *config.Config) error {
	if (t.Environment == "") != (t.Output == "") {
		return errors.ValidationError("--environment and --output must be given together").Build()
	}
	if t.Environment != "" {
		cfg.Trac.Environment = t.Environment
		cfg.Output.Directory = t.Output
	}
	return nil
}

// loadConfig loads root.Config, applies overrides and validates the result.
// The process logger is replaced by one honoring the logging section.
func loadConfig(g *Global, root *CLI, target Target) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if err := target.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g.Logger = config.NewLogger(os.Stderr, cfg.Logging, root.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

var sinceLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"}

// ParseSince parses a --since value. Dates without a zone are UTC.
func ParseSince(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range sinceLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.ValidationError("invalid --since date, use YYYY-MM-DD or RFC 3339").
		WithContext("value", raw).
		Build()
}

package config

import (
	stderrors "errors"
	"path"
	"strings"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/foundation/normalization"
)

// ErrMissingSetting is wrapped by Validate when a required setting is empty.
var ErrMissingSetting = stderrors.New("missing required setting")

// CamelCaseMode controls linking of bare CamelCase words.
type CamelCaseMode string

const (
	CamelCaseKnown      CamelCaseMode = "known"      // link only names of existing pages
	CamelCasePermissive CamelCaseMode = "permissive" // link every CamelCase word
	CamelCaseOff        CamelCaseMode = "off"
)

var camelCaseNormalizer = normalization.NewNormalizer("links.camel_case", map[string]CamelCaseMode{
	"known":      CamelCaseKnown,
	"permissive": CamelCasePermissive,
	"off":        CamelCaseOff,
}, CamelCaseKnown)

// HTMLMode controls how {{{#!html}}} blocks are emitted.
type HTMLMode string

const (
	HTMLFence    HTMLMode = "fence"    // emit as an html code block
	HTMLSanitize HTMLMode = "sanitize" // emit inline after stripping scripts and handlers
)

var htmlModeNormalizer = normalization.NewNormalizer("code.html", map[string]HTMLMode{
	"fence":    HTMLFence,
	"sanitize": HTMLSanitize,
}, HTMLFence)

var logLevelParser = normalization.NewNormalizer("logging.level", map[string]LogLevel{
	"debug": LogLevelDebug, "info": LogLevelInfo, "warn": LogLevelWarn, "warning": LogLevelWarn, "error": LogLevelError,
}, LogLevelInfo)

var logFormatParser = normalization.NewNormalizer("logging.format", map[string]LogFormat{
	"json": LogFormatJSON, "text": LogFormatText,
}, LogFormatText)

// Validate checks required settings and normalizes enumerated values in place.
// Every failure is a fatal configuration error.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"trac.environment", c.Trac.Environment},
		{"output.directory", c.Output.Directory},
		{"links.main", c.Links.Main},
		{"links.docs", c.Links.Docs},
		{"links.code", c.Links.Code},
		{"links.wiki", c.Links.Wiki},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return errors.WrapError(ErrMissingSetting, errors.CategoryConfig, "missing required settings: "+strings.Join(missing, ", ")).
			Fatal().
			WithContext("settings", missing).
			Build()
	}

	camel, err := camelCaseNormalizer.Parse(string(c.Links.CamelCase))
	if err != nil {
		return invalid(err)
	}
	c.Links.CamelCase = camel

	html, err := htmlModeNormalizer.Parse(string(c.Code.HTML))
	if err != nil {
		return invalid(err)
	}
	c.Code.HTML = html

	level, err := logLevelParser.Parse(string(c.Logging.Level))
	if err != nil {
		return invalid(err)
	}
	c.Logging.Level = level

	format, err := logFormatParser.Parse(string(c.Logging.Format))
	if err != nil {
		return invalid(err)
	}
	c.Logging.Format = format

	for _, pattern := range c.Ignore {
		if _, err := path.Match(pattern, ""); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid ignore pattern").
				Fatal().
				WithContext("pattern", pattern).
				Build()
		}
	}
	if c.Notify.NATSURL != "" && strings.TrimSpace(c.Notify.Subject) == "" {
		return errors.ConfigError("notify.subject must be set when notify.nats_url is configured").Build()
	}
	return nil
}

func invalid(err error) error {
	return errors.WrapError(err, errors.CategoryConfig, "invalid configuration value").Fatal().Build()
}

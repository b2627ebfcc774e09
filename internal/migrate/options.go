package migrate

import (
	"log/slog"

	"git.home.luguber.info/inful/trac2md/internal/config"
	"git.home.luguber.info/inful/trac2md/internal/convert"
	"git.home.luguber.info/inful/trac2md/internal/links"
)

// LinkTemplates returns the resolver templates configured in cfg.
func LinkTemplates(cfg *config.Config) links.Templates {
	return links.Templates{
		Main: cfg.Links.Main,
		Docs: cfg.Links.Docs,
		Code: cfg.Links.Code,
		Wiki: cfg.Links.Wiki,
	}
}

// CamelCaseMode maps the configured mode onto the resolver's.
func CamelCaseMode(mode config.CamelCaseMode) links.CamelCaseMode {
	switch mode {
	case config.CamelCasePermissive:
		return links.CamelCasePermissive
	case config.CamelCaseOff:
		return links.CamelCaseOff
	default:
		return links.CamelCaseKnown
	}
}

// HTMLMode maps the configured mode onto the pipeline's.
func HTMLMode(mode config.HTMLMode) convert.HTMLMode {
	if mode == config.HTMLSanitize {
		return convert.HTMLSanitize
	}
	return convert.HTMLFence
}

// PipelineOptions builds the pipeline options for cfg. resolver may be nil.
func PipelineOptions(cfg *config.Config, resolver *links.Resolver, logger *slog.Logger) convert.Options {
	return convert.Options{
		Resolver:         resolver,
		StripMacros:      cfg.Preprocess.StripMacros,
		HTML:             HTMLMode(cfg.Code.HTML),
		CopyUnreferenced: cfg.Attachments.CopyUnreferenced,
		Logger:           logger,
	}
}

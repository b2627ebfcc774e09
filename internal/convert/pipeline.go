package convert

import (
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/trac2md/internal/links"
	"git.home.luguber.info/inful/trac2md/internal/logfields"
	"git.home.luguber.info/inful/trac2md/internal/trac"
)

// Options configure a Pipeline.
type Options struct {
	// Resolver builds reference URLs. Nil resolves against empty templates.
	Resolver *links.Resolver

	// StripMacros names the macros removed during preprocessing.
	StripMacros []string

	// HTML selects how #!html blocks are emitted.
	HTML HTMLMode

	// CopyUnreferenced queues copies for attachments the page never links.
	CopyUnreferenced bool

	Logger *slog.Logger

	// Observer, when set, is called after every transform.
	Observer func(name string, stage TransformStage, d time.Duration, err error)
}

// Result is the converted page.
type Result struct {
	Markdown string
	Warnings []Warning
	Copies   []CopyRequest
}

// Pipeline converts pages with a fixed, dependency-ordered list of transforms.
type Pipeline struct {
	transforms []Transformer
	logger     *slog.Logger
	observer   func(string, TransformStage, time.Duration, error)
}

// Transforms returns the unordered set of transforms configured by opts.
func Transforms(opts Options) []Transformer {
	r := opts.Resolver
	if r == nil {
		r = links.NewResolver(links.Options{})
	}
	var all []Transformer
	all = append(all, preprocessTransforms(opts)...)
	all = append(all, protectTransforms(opts)...)
	all = append(all, structureTransforms()...)
	all = append(all, resolveTransforms(r)...)
	all = append(all, attachTransforms(opts, r)...)
	all = append(all, inlineTransforms()...)
	all = append(all, postprocessTransforms()...)
	return all
}

// NewPipeline validates and orders the transforms for opts.
func NewPipeline(opts Options) (*Pipeline, error) {
	all := Transforms(opts)
	if err := ValidateDependencies(all); err != nil {
		return nil, fmt.Errorf("invalid transform dependencies: %w", err)
	}
	ordered, err := BuildPipeline(all)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{transforms: ordered, logger: logger, observer: opts.Observer}, nil
}

// Transformers returns the execution order.
func (p *Pipeline) Transformers() []Transformer {
	return append([]Transformer(nil), p.transforms...)
}

// Convert runs every transform on page. A transform that fails or panics
// has its changes discarded and is recorded as a stage_failed warning; the
// remaining transforms still run.
func (p *Pipeline) Convert(page *trac.Page) (*Result, error) {
	if page == nil {
		return nil, fmt.Errorf("convert: nil page")
	}
	d := NewDocument(page)

	for _, t := range p.transforms {
		start := time.Now()
		err := p.run(t, d)
		if p.observer != nil {
			p.observer(t.Name(), t.Stage(), time.Since(start), err)
		}
		if err != nil {
			p.logger.Warn("Transform failed; change discarded",
				logfields.Page(page.Name),
				logfields.Transform(t.Name()),
				logfields.Stage(string(t.Stage())),
				logfields.Error(err))
			d.current = t.Name()
			d.Warn(WarnStageFailed, err.Error())
		}
	}
	d.current = ""

	return &Result{
		Markdown: d.Content,
		Warnings: d.Warnings,
		Copies:   d.Copies,
	}, nil
}

// run applies t and rolls d back if it does not complete.
func (p *Pipeline) run(t Transformer, d *Document) (err error) {
	snap := d.snapshot()
	d.current = t.Name()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			d.rollback(snap)
		}
	}()
	return t.Transform(d)
}

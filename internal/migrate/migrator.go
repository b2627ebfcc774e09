package migrate

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/trac2md/internal/config"
	"git.home.luguber.info/inful/trac2md/internal/convert"
	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/links"
	"git.home.luguber.info/inful/trac2md/internal/logfields"
	"git.home.luguber.info/inful/trac2md/internal/markdown"
	"git.home.luguber.info/inful/trac2md/internal/metrics"
	"git.home.luguber.info/inful/trac2md/internal/notify"
	"git.home.luguber.info/inful/trac2md/internal/output"
	"git.home.luguber.info/inful/trac2md/internal/report"
	"git.home.luguber.info/inful/trac2md/internal/trac"
)

// Selection narrows the pages of a run. A non-empty Page wins over Since.
type Selection struct {
	Since time.Time // zero means trac.DefaultSince
	Page  string
}

// Migrator converts selected pages from a store into an output directory.
type Migrator struct {
	cfg       *config.Config
	store     trac.Store
	writer    *output.Writer
	recorder  metrics.Recorder
	publisher notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
	newRunID  func() string
	closers   []func() error
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(m *Migrator) { m.recorder = r }
}

// WithPublisher sets the event publisher.
func WithPublisher(p notify.Publisher) Option {
	return func(m *Migrator) { m.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Migrator) { m.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) { m.now = now }
}

// New creates a Migrator over an opened store and writer.
func New(cfg *config.Config, store trac.Store, writer *output.Writer, opts ...Option) *Migrator {
	m := &Migrator{
		cfg:       cfg,
		store:     store,
		writer:    writer,
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// run is the state of one Run call.
type run struct {
	id       string
	pipeline *convert.Pipeline
	known    map[string]bool // page names that will exist in the output
	copied   map[string]bool // attachment targets written during this run
	report   *report.Report
}

// Run converts the selected pages. Page level problems end up in the returned
// report; an error means the run could not start or finish. The context is
// checked between pages.
func (m *Migrator) Run(ctx context.Context, sel Selection) (*report.Report, error) {
	started := m.now()
	r := &run{
		id:     m.newRunID(),
		copied: map[string]bool{},
	}
	r.report = report.New(r.id, started)
	r.report.Page = sel.Page
	logger := m.logger.With(logfields.RunID(r.id))

	pages, err := m.selectPages(ctx, sel, r.report)
	if err != nil {
		return nil, err
	}
	resolver, known, err := m.loadResolver(ctx)
	if err != nil {
		return nil, err
	}
	r.known = known

	opts := PipelineOptions(m.cfg, resolver, logger)
	opts.Observer = m.observeTransform
	r.pipeline, err = convert.NewPipeline(opts)
	if err != nil {
		return nil, errors.InternalError("invalid conversion pipeline").WithCause(err).Build()
	}

	logger.Info("Starting conversion run", logfields.Count(len(pages)))
	for _, page := range pages {
		if ctx.Err() != nil {
			r.report.Canceled = true
			break
		}
		r.report.Add(m.convertPage(ctx, r, page, logger))
	}

	if !r.report.Canceled && r.report.Converted() > 0 && m.cfg.Output.Git.Commit {
		if err := m.commit(r.report, logger); err != nil {
			r.report.Finish(m.now())
			m.finish(ctx, r.report, logger)
			return r.report, err
		}
	}

	r.report.Finish(m.now())
	m.finish(ctx, r.report, logger)
	if r.report.Canceled {
		return r.report, ctx.Err()
	}
	return r.report, nil
}

func (m *Migrator) selectPages(ctx context.Context, sel Selection, rep *report.Report) ([]*trac.Page, error) {
	var pages []*trac.Page
	if sel.Page != "" {
		page, err := m.store.GetPage(ctx, sel.Page)
		if err != nil {
			if stderrors.Is(err, trac.ErrPageNotFound) {
				return nil, errors.NotFoundError(fmt.Sprintf("wiki page %q not found", sel.Page)).
					WithCause(err).
					WithContext("page", sel.Page).
					Build()
			}
			return nil, err
		}
		pages = []*trac.Page{page}
	} else {
		since := sel.Since
		if since.IsZero() {
			since = trac.DefaultSince
		}
		rep.Since = since
		var err error
		pages, err = m.store.GetPages(ctx, since, m.cfg.Ignore)
		if err != nil {
			return nil, err
		}
	}

	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = p.Name
	}
	attachments, err := m.store.GetAttachments(ctx, names)
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		p.Attachments = attachments[p.Name]
	}
	return pages, nil
}

// loadResolver builds the resolver from the names known to the store. The
// returned set holds the pages the ignore list does not exclude.
func (m *Migrator) loadResolver(ctx context.Context) (*links.Resolver, map[string]bool, error) {
	pageNames, err := m.store.PageNames(ctx)
	if err != nil {
		return nil, nil, err
	}
	tickets, err := m.store.TicketIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	reports, err := m.store.ReportIDs(ctx)
	if err != nil {
		return nil, nil, err
	}

	known := make(map[string]bool, len(pageNames))
	for _, name := range pageNames {
		if !ignored(name, m.cfg.Ignore) {
			known[name] = true
		}
	}

	if pageNames == nil {
		pageNames = []string{}
	}
	resolver := links.NewResolver(links.Options{
		Templates: LinkTemplates(m.cfg),
		PageNames: pageNames,
		TicketIDs: tickets,
		ReportIDs: reports,
		CamelCase: CamelCaseMode(m.cfg.Links.CamelCase),
	})
	return resolver, known, nil
}

func ignored(name string, patterns []string) bool {
	for _, p := range patterns {
		if trac.MatchPattern(p, name) {
			return true
		}
	}
	return false
}

func (m *Migrator) convertPage(ctx context.Context, r *run, page *trac.Page, logger *slog.Logger) report.PageResult {
	start := m.now()
	logger = logger.With(logfields.Page(page.Name), logfields.PageVersion(page.Version))
	logger.Debug("Converting page")

	result := report.PageResult{Name: page.Name, Version: page.Version}
	res, err := r.pipeline.Convert(page)
	if err != nil {
		result.Error = err.Error()
		result.Category = string(errors.GetCategory(err))
		result.Duration = m.now().Sub(start)
		m.recorder.IncPageOutcome(metrics.PageFailed)
		logger.Error("Page conversion failed", logfields.Error(err))
		return result
	}
	warnings := res.Warnings

	for _, c := range res.Copies {
		if r.copied[c.Target] {
			continue
		}
		if err := m.writer.CopyAttachment(c.Source, c.Target); err != nil {
			m.recorder.IncAttachmentCopy(false)
			warnings = append(warnings, convert.Warning{
				Kind:   convert.WarnAttachmentCopyFailed,
				Detail: c.Target + ": " + err.Error(),
			})
			continue
		}
		m.recorder.IncAttachmentCopy(true)
		r.copied[c.Target] = true
		result.Copied++
	}

	warnings = append(warnings, m.danglingLinks(res.Markdown, r.known)...)

	target, err := m.writer.WritePage(page, res.Markdown)
	result.Warnings = warnings
	result.Duration = m.now().Sub(start)
	for _, w := range warnings {
		m.recorder.IncWarning(string(w.Kind))
		logger.Warn("Conversion warning",
			logfields.Kind(string(w.Kind)),
			logfields.Transform(w.Stage),
			slog.String("detail", w.Detail))
	}
	if err != nil {
		result.Error = err.Error()
		result.Category = string(errors.GetCategory(err))
		m.recorder.IncPageOutcome(metrics.PageFailed)
		logger.Error("Page write failed", logfields.Error(err))
		return result
	}

	rel, relErr := filepath.Rel(m.writer.Dir(), target)
	if relErr != nil {
		rel = target
	}
	result.Path = filepath.ToSlash(rel)
	if len(warnings) > 0 {
		m.recorder.IncPageOutcome(metrics.PageWarnings)
	} else {
		m.recorder.IncPageOutcome(metrics.PageConverted)
	}
	logger.Info("Converted page",
		logfields.Path(result.Path),
		logfields.Count(len(warnings)),
		logfields.DurationMS(float64(result.Duration.Microseconds())/1000))

	m.publishPage(ctx, r.id, page, res.Markdown, result, logger)
	return result
}

func (m *Migrator) observeTransform(name string, _ convert.TransformStage, d time.Duration, err error) {
	m.recorder.ObserveTransformDuration(name, d)
	if err != nil {
		m.recorder.IncTransformResult(name, metrics.ResultFailed)
		return
	}
	m.recorder.IncTransformResult(name, metrics.ResultSuccess)
}

// danglingLinks reports wiki links in body whose page will not be part of the
// output.
func (m *Migrator) danglingLinks(body string, known map[string]bool) []convert.Warning {
	found, err := markdown.ExtractLinks([]byte(body))
	if err != nil {
		m.logger.Debug("Link extraction failed", logfields.Error(err))
		return nil
	}
	wikiBase := links.NormalizeBase(m.cfg.Links.Wiki)
	var warnings []convert.Warning
	for _, name := range markdown.DanglingWikiLinks(found, wikiBase, func(page string) bool { return known[page] }) {
		warnings = append(warnings, convert.Warning{Kind: convert.WarnDanglingLink, Detail: name})
	}
	return warnings
}

func (m *Migrator) publishPage(ctx context.Context, runID string, page *trac.Page, body string, result report.PageResult, logger *slog.Logger) {
	event := &notify.PageEvent{
		RunID:    runID,
		Page:     page.Name,
		Version:  page.Version,
		Author:   page.Author,
		Path:     result.Path,
		Warnings: len(result.Warnings),
		Modified: page.Time,
	}
	if m.cfg.Output.FrontMatter {
		if fp, err := output.Fingerprint(output.FrontMatter(page), body); err == nil {
			event.Fingerprint = fp
		}
	}
	if err := m.publisher.PublishPage(ctx, event); err != nil {
		logger.Warn("Failed to publish page event", logfields.Error(err))
	}
}

func (m *Migrator) commit(rep *report.Report, logger *slog.Logger) error {
	gc := m.cfg.Output.Git
	hash, err := output.Commit(m.writer.Dir(), output.CommitOptions{
		Message:     gc.Message,
		AuthorName:  gc.AuthorName,
		AuthorEmail: gc.AuthorEmail,
		When:        m.now(),
	})
	if err != nil {
		logger.Error("Git commit failed", logfields.Error(err))
		return err
	}
	if hash == "" {
		logger.Info("Output unchanged, nothing to commit")
		return nil
	}
	rep.Commit = hash
	logger.Info("Committed output", slog.String("commit", hash))
	return nil
}

// finish records run level metrics, events and the JSON report.
func (m *Migrator) finish(ctx context.Context, rep *report.Report, logger *slog.Logger) {
	outcome := rep.Outcome()
	m.recorder.ObserveRunDuration(rep.Duration())
	m.recorder.IncRunOutcome(outcome)

	if path := m.cfg.Metrics.Textfile; path != "" {
		if tw, ok := m.recorder.(interface{ WriteTextfile(string) error }); ok {
			if err := tw.WriteTextfile(path); err != nil {
				logger.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
			}
		}
	}

	if err := m.publisher.PublishRun(context.WithoutCancel(ctx), &notify.RunEvent{
		RunID:    rep.RunID,
		Pages:    rep.Converted(),
		Failed:   len(rep.Failed()),
		Warnings: rep.WarningCount(),
		Commit:   rep.Commit,
		Started:  rep.Started,
	}); err != nil {
		logger.Warn("Failed to publish run event", logfields.Error(err))
	}

	if path := m.cfg.Report.JSON; path != "" {
		if err := rep.WriteJSON(path); err != nil {
			logger.Warn("Failed to write run report", logfields.Path(path), logfields.Error(err))
		}
	}

	logger.Info("Conversion run finished",
		slog.String("outcome", outcome),
		logfields.Count(len(rep.Pages)),
		logfields.DurationMS(float64(rep.Duration().Microseconds())/1000))
}

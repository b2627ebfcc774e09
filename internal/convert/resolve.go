package convert

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/trac2md/internal/links"
)

// externalURLRe finds hyperlink spans that belong to the inline stage.
// Reference rewrites never touch text inside them.
var externalURLRe = regexp.MustCompile(
	`\[\[(?:https?|ftp|mailto):[^\]\n]*\]\]` +
		`|\[(?:https?|ftp|mailto):[^\]\n]*\]` +
		`|\[www\.[^\]\n]*\]` +
		`|(?:https?|ftp)://[^\s<>\[\]]+`)

// referenceSkipRe adds image macros, whose arguments the attach stage reads.
var referenceSkipRe = regexp.MustCompile(externalURLRe.String() + `|\[\[Image\([^)\n]*\)\]\]`)

// rewriteFunc returns the replacement for one match. ok=false keeps the
// match unchanged.
type rewriteFunc func(d *Document, m []string) (replacement string, ok bool)

// rewriteMatches applies fn to every match of re that does not overlap a
// match of skip. Bare references additionally need a boundary before them.
func rewriteMatches(d *Document, re, skip *regexp.Regexp, bare bool, fn rewriteFunc) {
	content := d.Content
	var spans [][]int
	if skip != nil {
		spans = skip.FindAllStringIndex(content, -1)
	}

	var b strings.Builder
	last := 0
	for _, idx := range re.FindAllStringSubmatchIndex(content, -1) {
		start, end := idx[0], idx[1]
		if overlaps(spans, start, end) || (bare && !isBoundaryBefore(content, start)) {
			continue
		}
		m := make([]string, len(idx)/2)
		for i := range m {
			if idx[2*i] >= 0 {
				m[i] = content[idx[2*i]:idx[2*i+1]]
			}
		}
		repl, ok := fn(d, m)
		if !ok {
			continue
		}
		b.WriteString(content[last:start])
		b.WriteString(repl)
		last = end
	}
	if last == 0 {
		return
	}
	b.WriteString(content[last:])
	d.Content = b.String()
}

func overlaps(spans [][]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}

// linkOrLiteral vaults the resolved link, or the unchanged reference with an
// unresolved_reference warning.
func linkOrLiteral(d *Document, r *links.Resolver, tok links.Token) string {
	if r.Resolve(&tok) {
		return d.Protect(tok.Markdown())
	}
	d.Warn(WarnUnresolvedReference, tok.Raw)
	return d.Protect(tok.Raw)
}

// classifyFunc maps a reference target to a token kind. ok=false leaves the
// reference for another transform.
type classifyFunc func(target string) (links.Kind, bool)

func always(kind links.Kind) classifyFunc {
	return func(string) (links.Kind, bool) { return kind, true }
}

// refSyntax recognizes "prefix:target" references in their bracketed,
// double-bracketed and bare forms.
type refSyntax struct {
	double *regexp.Regexp
	single *regexp.Regexp
	bare   *regexp.Regexp
}

func newRefSyntax(prefix string) refSyntax {
	p := regexp.QuoteMeta(prefix)
	return refSyntax{
		double: regexp.MustCompile(`\[\[` + p + `:([^\]|\n]+?)(?:\|([^\]\n]*))?\]\]`),
		single: regexp.MustCompile(`\[` + p + `:("[^"\n]+"|[^\s\]]+)(?:[ \t]+([^\]\n]*?))?[ \t]*\]`),
		bare:   regexp.MustCompile(`\b` + p + `:("[^"\n]+"|[^\s\[\]<>"]+)`),
	}
}

// refRewriter resolves one reference prefix. label derives the text of a
// reference written without one.
type refRewriter struct {
	syntax   refSyntax
	resolver *links.Resolver
	classify classifyFunc
	label    func(kind links.Kind, target, raw string) string
}

func (rw *refRewriter) transform(d *Document) error {
	bracketed := func(d *Document, m []string) (string, bool) {
		target := unquote(strings.TrimSpace(m[1]))
		kind, ok := rw.classify(target)
		if !ok {
			return "", false
		}
		label := strings.TrimSpace(m[2])
		if label == "" {
			label = rw.label(kind, target, m[0])
		}
		return linkOrLiteral(d, rw.resolver, links.Token{Kind: kind, Raw: m[0], Target: target, Label: label}), true
	}
	rewriteMatches(d, rw.syntax.double, referenceSkipRe, false, bracketed)
	rewriteMatches(d, rw.syntax.single, referenceSkipRe, false, bracketed)

	rewriteMatches(d, rw.syntax.bare, referenceSkipRe, true, func(d *Document, m []string) (string, bool) {
		raw := m[0]
		if !strings.HasSuffix(raw, `"`) {
			raw = trimTrailingPunct(raw)
		}
		target := unquote(raw[strings.IndexByte(raw, ':')+1:])
		if target == "" {
			return "", false
		}
		kind, ok := rw.classify(target)
		if !ok {
			return "", false
		}
		tok := links.Token{Kind: kind, Raw: raw, Target: target, Label: rw.label(kind, target, raw)}
		return linkOrLiteral(d, rw.resolver, tok) + m[0][len(raw):], true
	})
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func targetLabel(_ links.Kind, target, _ string) string {
	return target
}

func referenceLabel(kind links.Kind, target, _ string) string {
	switch kind {
	case links.KindTicket:
		return "#" + target
	case links.KindReport:
		return "report:" + target
	}
	return target
}

func isDocsPath(target string) bool {
	return strings.HasPrefix(strings.TrimLeft(target, "/"), "docs/")
}

var titleIndexRe = regexp.MustCompile(`\[\[TitleIndex(?:\(([^)\n]*)\))?\]\]`)

// expandTitleIndex replaces [[TitleIndex(prefix)]] with a bullet list of
// matching pages.
func expandTitleIndex(r *links.Resolver) func(d *Document) error {
	return func(d *Document) error {
		rewriteMatches(d, titleIndexRe, referenceSkipRe, false, func(d *Document, m []string) (string, bool) {
			tokens, ok := r.TitleIndex(titleIndexPrefix(m[1]))
			if !ok {
				d.Warn(WarnUnresolvedReference, m[0])
				return d.Protect(m[0]), true
			}
			items := make([]string, len(tokens))
			for i, tok := range tokens {
				items[i] = "- " + tok.Markdown()
			}
			return d.Protect(strings.Join(items, "\n")), true
		})
		return nil
	}
}

// titleIndexPrefix picks the first positional macro argument.
func titleIndexPrefix(args string) string {
	for _, arg := range strings.Split(args, ",") {
		arg = strings.TrimSpace(arg)
		if arg != "" && !strings.Contains(arg, "=") {
			return arg
		}
	}
	return ""
}

var (
	ticketHashRe  = regexp.MustCompile(`#(\d+)\b`)
	reportBraceRe = regexp.MustCompile(`\{(\d+)\}`)
	camelCaseRe   = regexp.MustCompile(`\b[A-Z][a-z0-9]+(?:[A-Z][a-z0-9]+)+\b`)
)

// shorthand resolves a bare numeric shorthand such as #12 or {3}.
func shorthand(r *links.Resolver, re *regexp.Regexp, kind links.Kind) func(d *Document) error {
	return func(d *Document) error {
		rewriteMatches(d, re, referenceSkipRe, true, func(d *Document, m []string) (string, bool) {
			tok := links.Token{Kind: kind, Raw: m[0], Target: m[1], Label: m[0]}
			return linkOrLiteral(d, r, tok), true
		})
		return nil
	}
}

// linkCamelCase links bare CamelCase page names. Words that do not resolve
// are ordinary text and produce no warning.
func linkCamelCase(r *links.Resolver) func(d *Document) error {
	return func(d *Document) error {
		rewriteMatches(d, camelCaseRe, referenceSkipRe, true, func(d *Document, m []string) (string, bool) {
			url, ok := r.CamelCase(m[0])
			if !ok {
				return "", false
			}
			return d.Protect(links.Token{Kind: links.KindWiki, Raw: m[0], Target: m[0], URL: url}.Markdown()), true
		})
		return nil
	}
}

func resolveTransforms(r *links.Resolver) []Transformer {
	ref := func(prefix string, classify classifyFunc, label func(links.Kind, string, string) string) func(*Document) error {
		rw := &refRewriter{syntax: newRefSyntax(prefix), resolver: r, classify: classify, label: label}
		return rw.transform
	}
	resolving := func(after ...string) TransformDependencies {
		return TransformDependencies{
			MustRunAfter:         after,
			ProducesPlaceholders: true,
			RequiresResolver:     true,
		}
	}
	bracketed := []string{"title_index", "log_links", "source_docs", "source_links", "wiki_links", "report_links"}

	return []Transformer{
		&funcTransform{
			name:  "title_index",
			stage: StageResolve,
			deps:  resolving(),
			fn:    expandTitleIndex(r),
		},
		&funcTransform{
			name:  "log_links",
			stage: StageResolve,
			deps:  resolving(),
			fn:    ref("log", always(links.KindLog), targetLabel),
		},
		&funcTransform{
			name:  "source_docs",
			stage: StageResolve,
			deps:  resolving(),
			fn: ref("source", func(target string) (links.Kind, bool) {
				return links.KindDoc, isDocsPath(target)
			}, targetLabel),
		},
		&funcTransform{
			name:  "source_links",
			stage: StageResolve,
			deps:  resolving("source_docs"),
			fn:    ref("source", always(links.KindSource), targetLabel),
		},
		&funcTransform{
			name:  "wiki_links",
			stage: StageResolve,
			deps:  resolving(),
			fn:    ref("wiki", always(links.KindWiki), targetLabel),
		},
		&funcTransform{
			name:  "report_links",
			stage: StageResolve,
			deps:  resolving(),
			fn: chain(
				ref("report", always(links.KindReport), referenceLabel),
				shorthand(r, reportBraceRe, links.KindReport),
			),
		},
		&funcTransform{
			name:  "ticket_links",
			stage: StageResolve,
			deps:  resolving(bracketed...),
			fn: chain(
				ref("ticket", always(links.KindTicket), referenceLabel),
				shorthand(r, ticketHashRe, links.KindTicket),
			),
		},
		&funcTransform{
			name:  "camel_case_links",
			stage: StageResolve,
			deps:  resolving(append(bracketed, "ticket_links")...),
			fn:    linkCamelCase(r),
		},
	}
}

// chain runs fns in order, stopping at the first error.
func chain(fns ...func(*Document) error) func(*Document) error {
	return func(d *Document) error {
		for _, fn := range fns {
			if err := fn(d); err != nil {
				return err
			}
		}
		return nil
	}
}

package links

import (
	"sort"
	"strconv"
	"strings"
)

// CamelCaseMode controls linking of bare CamelCase words.
type CamelCaseMode int

const (
	// CamelCaseKnown links a word only when it names a known page.
	CamelCaseKnown CamelCaseMode = iota
	// CamelCasePermissive links every CamelCase word.
	CamelCasePermissive
	// CamelCaseOff never links bare words.
	CamelCaseOff
)

// Templates are the configured base URLs.
type Templates struct {
	Main string
	Docs string
	Code string
	Wiki string
}

// Options configure a Resolver. Nil name lists are permissive.
type Options struct {
	Templates Templates
	PageNames []string
	TicketIDs []int
	ReportIDs []int
	CamelCase CamelCaseMode
}

// Resolver turns tokens into URLs.
type Resolver struct {
	main, docs, code, wiki string

	pageList []string
	pages    map[string]bool
	tickets  map[int]bool
	reports  map[int]bool
	camel    CamelCaseMode
}

// NewResolver builds a Resolver from opts.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		main:  NormalizeBase(opts.Templates.Main),
		docs:  NormalizeBase(opts.Templates.Docs),
		code:  NormalizeBase(opts.Templates.Code),
		wiki:  NormalizeBase(opts.Templates.Wiki),
		camel: opts.CamelCase,
	}
	if opts.PageNames != nil {
		r.pageList = append([]string(nil), opts.PageNames...)
		sort.Strings(r.pageList)
		r.pages = make(map[string]bool, len(r.pageList))
		for _, n := range r.pageList {
			r.pages[n] = true
		}
	}
	r.tickets = intSet(opts.TicketIDs)
	r.reports = intSet(opts.ReportIDs)
	return r
}

func intSet(ids []int) map[int]bool {
	if ids == nil {
		return nil
	}
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

// NormalizeBase adds https:// to scheme-less templates and ensures a trailing slash.
func NormalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	if !strings.Contains(base, "://") {
		base = "https://" + strings.TrimLeft(base, "/")
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// Resolve fills tok.URL. It reports false for malformed tokens and for names
// missing from a supplied known-name set.
func (r *Resolver) Resolve(tok *Token) bool {
	var (
		url string
		ok  bool
	)
	switch tok.Kind {
	case KindWiki:
		url, ok = r.Wiki(tok.Target)
	case KindTicket:
		url, ok = r.Ticket(tok.Target)
	case KindReport:
		url, ok = r.Report(tok.Target)
	case KindSource:
		url, ok = r.Source(tok.Target)
	case KindDoc:
		url, ok = r.Doc(tok.Target)
	case KindLog:
		url, ok = r.Log(tok.Target)
	}
	if ok {
		tok.URL = url
	}
	return ok
}

// HasPage reports whether name is a known page. Without a page set every name is known.
func (r *Resolver) HasPage(name string) bool {
	return r.pages == nil || r.pages[name]
}

// Wiki resolves "Name" or "Name#anchor".
func (r *Resolver) Wiki(target string) (string, bool) {
	name, anchor, _ := strings.Cut(target, "#")
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" || !r.HasPage(name) {
		return "", false
	}
	url := r.wiki + EscapePath(name)
	if anchor != "" {
		url += "#" + anchor
	}
	return url, true
}

// CamelCase resolves a bare CamelCase word according to the configured mode.
func (r *Resolver) CamelCase(word string) (string, bool) {
	switch r.camel {
	case CamelCaseOff:
		return "", false
	case CamelCaseKnown:
		if r.pages == nil || !r.pages[word] {
			return "", false
		}
	}
	return r.wiki + EscapePath(word), true
}

// Ticket resolves a ticket number.
func (r *Resolver) Ticket(id string) (string, bool) {
	n, ok := number(id)
	if !ok || (r.tickets != nil && !r.tickets[n]) {
		return "", false
	}
	return r.main + "ticket/" + strconv.Itoa(n), true
}

// Report resolves a report number.
func (r *Resolver) Report(id string) (string, bool) {
	n, ok := number(id)
	if !ok || (r.reports != nil && !r.reports[n]) {
		return "", false
	}
	return r.main + "report/" + strconv.Itoa(n), true
}

func number(s string) (int, bool) {
	if s == "" || len(s) > 9 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// TicketAttachment resolves a file attached to a ticket to its raw download URL.
func (r *Resolver) TicketAttachment(id, filename string) (string, bool) {
	n, ok := number(id)
	if !ok || filename == "" {
		return "", false
	}
	return r.main + "raw-attachment/ticket/" + strconv.Itoa(n) + "/" + EscapePath(filename), true
}

// Source resolves "path[@rev][#L1]" against the repository browser.
func (r *Resolver) Source(target string) (string, bool) {
	rest, fragment, _ := strings.Cut(target, "#")
	path, rev, hasRev := strings.Cut(rest, "@")
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" || (hasRev && rev == "") {
		return "", false
	}
	url := r.main + "browser/" + EscapePath(path)
	if hasRev {
		url += "?rev=" + rev
	}
	if fragment != "" {
		url += "#" + fragment
	}
	return url, true
}

// Doc resolves "docs/path" against the documentation base.
func (r *Resolver) Doc(target string) (string, bool) {
	path := strings.TrimLeft(strings.TrimSpace(target), "/")
	path, ok := strings.CutPrefix(path, "docs/")
	if !ok || path == "" {
		return "", false
	}
	return r.docs + EscapePath(path), true
}

// Log resolves "path[@rev]" or "path@a:b" against the code log base.
func (r *Resolver) Log(target string) (string, bool) {
	path, revs, hasRev := strings.Cut(strings.TrimSpace(target), "@")
	path = strings.TrimLeft(path, "/")
	if path == "" || (hasRev && revs == "") {
		return "", false
	}
	url := r.code + EscapePath(path)
	if !hasRev {
		return url, true
	}
	if from, to, isRange := strings.Cut(revs, ":"); isRange {
		if from == "" || to == "" {
			return "", false
		}
		return url + "?revs=" + from + "-" + to, true
	}
	return url + "?rev=" + revs, true
}

// TitleIndex returns tokens for every known page starting with prefix. It
// reports false when no page set is available.
func (r *Resolver) TitleIndex(prefix string) ([]Token, bool) {
	if r.pages == nil {
		return nil, false
	}
	var out []Token
	for _, name := range r.pageList {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		out = append(out, Token{Kind: KindWiki, Target: name, URL: r.wiki + EscapePath(name)})
	}
	return out, true
}

var pathEscaper = strings.NewReplacer(" ", "%20", "(", "%28", ")", "%29", "<", "%3C", ">", "%3E")

// EscapePath escapes characters that would break a Markdown link destination.
func EscapePath(p string) string {
	return pathEscaper.Replace(p)
}

var labelEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)

// EscapeLabel escapes brackets in link text.
func EscapeLabel(s string) string {
	return labelEscaper.Replace(s)
}

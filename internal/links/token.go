package links

// Kind identifies a Trac reference syntax.
type Kind string

const (
	KindWiki       Kind = "wiki"
	KindTicket     Kind = "ticket"
	KindReport     Kind = "report"
	KindSource     Kind = "source"
	KindDoc        Kind = "doc"
	KindTitleIndex Kind = "titleindex"
	KindLog        Kind = "log"
)

// Token is one recognized reference in page text.
type Token struct {
	Kind   Kind
	Raw    string // matched span, kept for unresolved references
	Target string // page name, number or repository path
	Label  string // link text; empty means derive from Target
	URL    string // filled by Resolve
}

// Text returns the link text to render.
func (t Token) Text() string {
	if t.Label != "" {
		return t.Label
	}
	if t.Kind == KindTicket {
		return "#" + t.Target
	}
	return t.Target
}

// Markdown renders the resolved token as an inline link.
func (t Token) Markdown() string {
	return "[" + EscapeLabel(t.Text()) + "](" + t.URL + ")"
}

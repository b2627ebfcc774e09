package convert

import (
	"regexp"

	"git.home.luguber.info/inful/trac2md/internal/links"
)

var (
	wikiHyperlinkRe   = regexp.MustCompile(`\[\[((?:https?|ftp|mailto):[^\]|\s]+)\|([^\]\n]+)\]\]`)
	bareWikiHyperRe   = regexp.MustCompile(`\[\[((?:https?|ftp|mailto):[^\]|\s]+)\]\]`)
	labelledHyperRe   = regexp.MustCompile(`\[((?:https?|ftp|mailto):[^\]\s]+)[ \t]+([^\]\n]+?)[ \t]*\]`)
	unlabelledHyperRe = regexp.MustCompile(`\[((?:https?|ftp):[^\]\s]+)\]`)
	wwwHyperRe        = regexp.MustCompile(`\[(www\.[^\]\s]+)(?:[ \t]+([^\]\n]+?))?[ \t]*\]`)
	bareURLRe         = regexp.MustCompile(`(?:https?|ftp)://[^\s<>\[\]"]+`)
)

// convertHyperlinks rewrites external links and vaults bare URLs so emphasis
// rules cannot see the underscores and slashes inside them.
func convertHyperlinks(d *Document) error {
	link := func(label, url string) string {
		return d.Protect("[" + links.EscapeLabel(label) + "](" + links.EscapePath(url) + ")")
	}
	rewriteAll(d, wikiHyperlinkRe, func(m []string) string { return link(m[2], m[1]) })
	rewriteAll(d, bareWikiHyperRe, func(m []string) string { return d.Protect("<" + m[1] + ">") })
	rewriteAll(d, labelledHyperRe, func(m []string) string { return link(m[2], m[1]) })
	rewriteAll(d, unlabelledHyperRe, func(m []string) string { return d.Protect("<" + m[1] + ">") })
	rewriteAll(d, wwwHyperRe, func(m []string) string {
		label := m[2]
		if label == "" {
			label = m[1]
		}
		return link(label, "https://"+m[1])
	})
	rewriteAll(d, bareURLRe, func(m []string) string {
		url := trimTrailingPunct(m[0])
		return d.Protect(url) + m[0][len(url):]
	})
	return nil
}

// rewriteAll replaces every match of re in the document.
func rewriteAll(d *Document, re *regexp.Regexp, fn func(m []string) string) {
	d.Content = re.ReplaceAllStringFunc(d.Content, func(s string) string {
		return fn(re.FindStringSubmatch(s))
	})
}

var (
	boldItalicRe = regexp.MustCompile(`'''''(.+?)'''''`)
	boldRe       = regexp.MustCompile(`'''\s*(.+?)\s*'''`)
	italicQuote  = regexp.MustCompile(`''(.+?)''`)
	italicSlash  = regexp.MustCompile(`(?m)(^|[^:/])//([^/\n]+?)//`)
	underlineRe  = regexp.MustCompile(`__([^_\n]+?)__`)
	superRe      = regexp.MustCompile(`\^([^^\s][^^\n]*?)\^`)
	subRe        = regexp.MustCompile(`,,([^,\n]+?),,`)
)

func convertBoldItalic(content string) string {
	return boldItalicRe.ReplaceAllString(content, "***$1***")
}

func convertBold(content string) string {
	return boldRe.ReplaceAllString(content, "**$1**")
}

func convertItalic(content string) string {
	content = italicQuote.ReplaceAllString(content, "*$1*")
	return italicSlash.ReplaceAllString(content, "$1*$2*")
}

func convertUnderline(content string) string {
	return underlineRe.ReplaceAllString(content, "<u>$1</u>")
}

func convertSuperSub(content string) string {
	content = superRe.ReplaceAllString(content, "<sup>$1</sup>")
	return subRe.ReplaceAllString(content, "<sub>$1</sub>")
}

func inlineTransforms() []Transformer {
	emphasis := func(name string, fn func(string) string, before ...string) Transformer {
		return &funcTransform{
			name:  name,
			stage: StageInline,
			deps: TransformDependencies{
				MustRunAfter:  []string{"hyperlinks"},
				MustRunBefore: before,
			},
			fn: contentRewrite(fn),
		}
	}
	return []Transformer{
		&funcTransform{
			name:  "hyperlinks",
			stage: StageInline,
			deps:  TransformDependencies{ProducesPlaceholders: true},
			fn:    convertHyperlinks,
		},
		emphasis("bold_italic", convertBoldItalic, "bold"),
		emphasis("bold", convertBold, "italic"),
		emphasis("italic", convertItalic),
		emphasis("underline", convertUnderline),
		emphasis("super_sub", convertSuperSub),
	}
}

package convert

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"git.home.luguber.info/inful/trac2md/internal/links"
)

var (
	imageMacroRe       = regexp.MustCompile(`\[\[Image\(([^)\n]*)\)\]\]`)
	attachmentDoubleRe = regexp.MustCompile(`\[\[(?:raw-)?attachment:([^\]|\n]+?)(?:\|([^\]\n]*))?\]\]`)
	attachmentSingleRe = regexp.MustCompile(`\[(?:raw-)?attachment:("[^"\n]+"|[^\s\]]+)(?:[ \t]+([^\]\n]*?))?[ \t]*\]`)
	attachmentBareRe   = regexp.MustCompile(`\b(?:raw-)?attachment:("[^"\n]+"|[^\s\[\]<>"]+)`)
)

// SanitizeFilename is the on-disk name of a copied attachment: whitespace
// removed, Unicode NFC.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, name)
	return norm.NFC.String(name)
}

// attachmentRef is a parsed attachment target.
type attachmentRef struct {
	file   string
	page   string // owning wiki page; empty means the current page
	ticket string // owning ticket
	url    string // already absolute
}

// attachments rewrites image macros and attachment links and queues the
// copies of the files they reference.
type attachments struct {
	resolver         *links.Resolver
	copyUnreferenced bool
}

func (a *attachments) transform(d *Document) error {
	rewriteMatches(d, imageMacroRe, nil, false, func(d *Document, m []string) (string, bool) {
		ref, ok := a.parseImageTarget(imageTarget(m[1]))
		if !ok {
			d.Warn(WarnUnresolvedReference, m[0])
			return d.Protect(m[0]), true
		}
		alt := SanitizeFilename(ref.file)
		return d.Protect("![" + links.EscapeLabel(alt) + "](" + a.link(d, ref) + ")"), true
	})

	linked := func(d *Document, m []string) (string, bool) {
		ref := parseAttachmentTarget(unquote(strings.TrimSpace(m[1])))
		if ref.file == "" {
			return "", false
		}
		label := strings.TrimSpace(m[2])
		if label == "" {
			label = ref.file
		}
		return d.Protect("[" + links.EscapeLabel(label) + "](" + a.link(d, ref) + ")"), true
	}
	rewriteMatches(d, attachmentDoubleRe, externalURLRe, false, linked)
	rewriteMatches(d, attachmentSingleRe, externalURLRe, false, linked)
	rewriteMatches(d, attachmentBareRe, externalURLRe, true, func(d *Document, m []string) (string, bool) {
		raw := m[0]
		if !strings.HasSuffix(raw, `"`) {
			raw = trimTrailingPunct(raw)
		}
		target := unquote(raw[strings.IndexByte(raw, ':')+1:])
		repl, ok := linked(d, []string{raw, target, ""})
		if !ok {
			return "", false
		}
		return repl + m[0][len(raw):], true
	})

	if a.copyUnreferenced && d.Page != nil {
		for _, att := range d.Page.Attachments {
			if !d.referenced[att.Filename] {
				d.RequestCopy(CopyRequest{
					Filename: att.Filename,
					Source:   att.Path,
					Target:   d.Page.Name + "/" + SanitizeFilename(att.Filename),
				})
			}
		}
	}
	return nil
}

// link returns the Markdown destination for ref, queueing a copy when the
// file belongs to the current page.
func (a *attachments) link(d *Document, ref attachmentRef) string {
	switch {
	case ref.url != "":
		return ref.url
	case ref.ticket != "":
		url, ok := a.resolver.TicketAttachment(ref.ticket, ref.file)
		if !ok {
			d.Warn(WarnUnresolvedReference, "ticket:"+ref.ticket+":"+ref.file)
		}
		return url
	}

	current := d.Page.Name
	file := SanitizeFilename(ref.file)
	if ref.page != "" && ref.page != current {
		return links.EscapePath(relativePath(path.Dir(current), ref.page+"/"+file))
	}

	d.referenced[ref.file] = true
	if att, ok := d.Page.FindAttachment(ref.file); ok {
		d.RequestCopy(CopyRequest{Filename: att.Filename, Source: att.Path, Target: current + "/" + file})
	} else {
		d.Warn(WarnMissingAttachment, current+"/"+ref.file)
	}
	return links.EscapePath(path.Base(current) + "/" + file)
}

// imageTarget returns the first macro argument.
func imageTarget(args string) string {
	target, _, _ := strings.Cut(args, ",")
	return strings.TrimSpace(target)
}

func (a *attachments) parseImageTarget(target string) (attachmentRef, bool) {
	switch {
	case target == "":
		return attachmentRef{}, false
	case strings.HasPrefix(target, "http://"), strings.HasPrefix(target, "https://"):
		return attachmentRef{file: path.Base(target), url: target}, true
	case strings.HasPrefix(target, "source:"):
		url, ok := a.resolver.Source(strings.TrimPrefix(target, "source:"))
		return attachmentRef{file: path.Base(strings.TrimPrefix(target, "source:")), url: url}, ok
	case strings.HasPrefix(target, "wiki:"):
		rest := strings.TrimPrefix(target, "wiki:")
		i := strings.LastIndexByte(rest, ':')
		if i <= 0 || i == len(rest)-1 {
			return attachmentRef{}, false
		}
		return attachmentRef{page: rest[:i], file: rest[i+1:]}, true
	case strings.HasPrefix(target, "ticket:"):
		id, file, ok := strings.Cut(strings.TrimPrefix(target, "ticket:"), ":")
		if !ok || file == "" {
			return attachmentRef{}, false
		}
		return attachmentRef{ticket: id, file: file}, true
	}
	return attachmentRef{file: target}, true
}

// parseAttachmentTarget reads "file", "file:wiki:Page" and "file:ticket:N".
func parseAttachmentTarget(target string) attachmentRef {
	if file, page, ok := strings.Cut(target, ":wiki:"); ok {
		return attachmentRef{file: file, page: page}
	}
	if file, id, ok := strings.Cut(target, ":ticket:"); ok {
		return attachmentRef{file: file, ticket: id}
	}
	return attachmentRef{file: target}
}

// relativePath returns the slash path to target as seen from directory from.
func relativePath(from, target string) string {
	if from == "." || from == "" {
		return target
	}
	fromParts := strings.Split(from, "/")
	targetParts := strings.Split(target, "/")
	common := 0
	for common < len(fromParts) && common < len(targetParts)-1 && fromParts[common] == targetParts[common] {
		common++
	}
	up := strings.Repeat("../", len(fromParts)-common)
	return up + strings.Join(targetParts[common:], "/")
}

func attachTransforms(opts Options, r *links.Resolver) []Transformer {
	a := &attachments{resolver: r, copyUnreferenced: opts.CopyUnreferenced}
	return []Transformer{
		&funcTransform{
			name:  "attachments",
			stage: StageAttach,
			deps: TransformDependencies{
				ProducesPlaceholders: true,
				RequiresResolver:     true,
				RequiresAttachments:  true,
			},
			fn: a.transform,
		},
	}
}

// Package markdown analyzes converted Markdown with goldmark.
package markdown

import (
	"net/url"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

func newParser() goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))
}

// ParseBody parses a Markdown body into a goldmark AST.
func ParseBody(body []byte) gmast.Node {
	return newParser().Parser().Parse(text.NewReader(body))
}

// ExtractLinks returns the links, images and autolinks of body in document
// order. Code spans and code blocks are not inspected.
func ExtractLinks(body []byte) ([]Link, error) {
	root := ParseBody(body)

	links := make([]Link, 0)
	err := gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body))})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination)})
		}
		return gmast.WalkContinue, nil
	})
	return links, err
}

// DanglingWikiLinks returns the sorted, unique page names that links under
// wikiBase point to and for which exists reports false.
func DanglingWikiLinks(links []Link, wikiBase string, exists func(page string) bool) []string {
	if wikiBase == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, l := range links {
		if l.Kind == LinkKindImage {
			continue
		}
		rest, ok := strings.CutPrefix(l.Destination, wikiBase)
		if !ok {
			continue
		}
		rest, _, _ = strings.Cut(rest, "#")
		rest, _, _ = strings.Cut(rest, "?")
		name, err := url.PathUnescape(rest)
		if err != nil || name == "" || seen[name] || exists(name) {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

package convert

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// droppedElements never survive sanitizing.
var droppedElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Iframe: true, atom.Object: true,
	atom.Embed: true, atom.Form: true, atom.Link: true, atom.Meta: true,
}

// sanitizeHTML removes active content from an HTML fragment: script-like
// elements, event handler attributes and javascript: URLs.
func sanitizeHTML(fragment string) string {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return html.EscapeString(fragment)
	}

	var b strings.Builder
	for _, n := range nodes {
		if scrub(n) {
			continue
		}
		if err := html.Render(&b, n); err != nil {
			return html.EscapeString(fragment)
		}
	}
	return strings.TrimSpace(b.String())
}

// scrub cleans n in place and reports whether n itself must be dropped.
func scrub(n *html.Node) bool {
	if n.Type == html.CommentNode {
		return true
	}
	if n.Type != html.ElementNode {
		return false
	}
	if droppedElements[n.DataAtom] {
		return true
	}

	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if scrub(c) {
			n.RemoveChild(c)
		}
		c = next
	}
	return false
}

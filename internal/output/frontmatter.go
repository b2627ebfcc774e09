package output

import (
	"bytes"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/trac2md/internal/trac"
)

// uidNamespace scopes page uids so the same page name always maps to the same uid.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("trac2md:page"))

// PageUID returns the stable uid of a page name.
func PageUID(name string) string {
	return uuid.NewSHA1(uidNamespace, []byte(name)).String()
}

// FrontMatter returns the front matter fields of page, without fingerprint.
func FrontMatter(page *trac.Page) map[string]any {
	fields := map[string]any{
		"title":        path.Base(page.Name),
		"trac_page":    page.Name,
		"trac_version": page.Version,
		"uid":          PageUID(page.Name),
	}
	if !page.Time.IsZero() {
		fields["date"] = page.Time.UTC().Format(time.RFC3339)
	}
	if page.Author != "" {
		fields["author"] = page.Author
	}
	return fields
}

// Fingerprint computes the content fingerprint of body under fields. The uid
// and an existing fingerprint do not take part.
func Fingerprint(fields map[string]any, body string) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField || k == "uid" {
			continue
		}
		hashed[k] = v
	}
	serialized, err := SerializeYAML(hashed)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(serialized), "\n"), body), nil
}

// WithPageFrontMatter prepends a front matter block for page to body.
func WithPageFrontMatter(page *trac.Page, body string) (string, error) {
	fields := FrontMatter(page)
	fp, err := Fingerprint(fields, body)
	if err != nil {
		return "", err
	}
	fields[mdfp.FingerprintField] = fp

	serialized, err := SerializeYAML(fields)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(serialized)
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String(), nil
}

// SerializeYAML renders fields with sorted keys.
func SerializeYAML(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return []byte{}, nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range keys {
		var value yaml.Node
		if err := value.Encode(fields[k]); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &value)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package markdown

// LinkKind classifies a link found in Markdown.
type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
)

// Link is one link-like construct of a Markdown body.
type Link struct {
	Kind        LinkKind
	Destination string
}

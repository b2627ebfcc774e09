package convert

import (
	"git.home.luguber.info/inful/trac2md/internal/trac"
)

// WarningKind classifies non-fatal conversion problems.
type WarningKind string

const (
	WarnUnresolvedReference  WarningKind = "unresolved_reference"
	WarnMissingAttachment    WarningKind = "missing_attachment"
	WarnAttachmentCopyFailed WarningKind = "attachment_copy_failed"
	WarnStageFailed          WarningKind = "stage_failed"
	WarnDanglingLink         WarningKind = "dangling_link"
)

// Warning is a non-fatal problem found while converting one page.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Stage  string      `json:"stage,omitempty"` // transform name
	Detail string      `json:"detail"`
}

// CopyRequest asks the caller to copy an attachment next to the page.
type CopyRequest struct {
	Filename string // name as recorded in Trac
	Source   string // path inside the Trac environment
	Target   string // slash-separated path relative to the output directory
}

// Document is the mutable state of one page while it moves through the pipeline.
type Document struct {
	Page    *trac.Page
	Content string

	Warnings []Warning
	Copies   []CopyRequest

	vault      *Vault
	referenced map[string]bool // attachment filenames linked from the page
	current    string          // transform currently running
}

// NewDocument wraps page for conversion.
func NewDocument(page *trac.Page) *Document {
	return &Document{
		Page:       page,
		Content:    page.Text,
		vault:      NewVault(),
		referenced: make(map[string]bool),
	}
}

// Warn records a warning attributed to the running transform.
func (d *Document) Warn(kind WarningKind, detail string) {
	d.Warnings = append(d.Warnings, Warning{Kind: kind, Stage: d.current, Detail: detail})
}

// Protect moves s into the vault and returns its placeholder.
func (d *Document) Protect(s string) string {
	return d.vault.Protect(s)
}

// Vault exposes the document's protected spans.
func (d *Document) Vault() *Vault {
	return d.vault
}

// RequestCopy queues an attachment copy once per target.
func (d *Document) RequestCopy(req CopyRequest) {
	for _, existing := range d.Copies {
		if existing.Target == req.Target {
			return
		}
	}
	d.Copies = append(d.Copies, req)
}

// snapshot captures everything a transform may change.
type snapshot struct {
	content    string
	warnings   int
	copies     int
	vault      int
	referenced map[string]bool
}

func (d *Document) snapshot() snapshot {
	ref := make(map[string]bool, len(d.referenced))
	for k, v := range d.referenced {
		ref[k] = v
	}
	return snapshot{
		content:    d.Content,
		warnings:   len(d.Warnings),
		copies:     len(d.Copies),
		vault:      d.vault.Len(),
		referenced: ref,
	}
}

// rollback discards every change made since s was taken.
func (d *Document) rollback(s snapshot) {
	d.Content = s.content
	d.Warnings = d.Warnings[:s.warnings]
	d.Copies = d.Copies[:s.copies]
	d.vault.truncate(s.vault)
	d.referenced = s.referenced
}

package output

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/trac2md/internal/foundation/errors"
	"git.home.luguber.info/inful/trac2md/internal/logfields"
	"git.home.luguber.info/inful/trac2md/internal/trac"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// Writer writes pages and attachments below a destination directory.
type Writer struct {
	dir         string
	frontMatter bool
	logger      *slog.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithFrontMatter prepends YAML front matter to every page.
func WithFrontMatter(enabled bool) Option {
	return func(w *Writer) { w.frontMatter = enabled }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) { w.logger = logger }
}

// NewWriter creates the destination directory if needed.
func NewWriter(dir string, opts ...Option) (*Writer, error) {
	w := &Writer{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, errors.FileSystemError("cannot create output directory").
			WithCause(err).
			WithContext("path", dir).
			Fatal().
			Build()
	}
	return w, nil
}

// Dir returns the destination directory.
func (w *Writer) Dir() string {
	return w.dir
}

// PagePath returns the file a page is written to.
func (w *Writer) PagePath(name string) (string, error) {
	return w.resolve(name + ".md")
}

// WritePage writes the converted content of page and returns the file path.
func (w *Writer) WritePage(page *trac.Page, content string) (string, error) {
	target, err := w.PagePath(page.Name)
	if err != nil {
		return "", err
	}

	data := content
	if w.frontMatter {
		data, err = WithPageFrontMatter(page, content)
		if err != nil {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "cannot render front matter").
				WithContext("page", page.Name).
				Build()
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return "", w.fsError("cannot create page directory", target, err)
	}
	if err := os.WriteFile(target, []byte(data), filePerm); err != nil {
		return "", w.fsError("cannot write page", target, err)
	}
	w.logger.Debug("Wrote page", logfields.Page(page.Name), logfields.Path(target))
	return target, nil
}

// CopyAttachment copies src to rel, a slash-separated path below the
// destination directory.
func (w *Writer) CopyAttachment(src, rel string) error {
	target, err := w.resolve(rel)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return errors.AttachmentError("cannot open attachment").
			WithCause(err).
			WithContext("source", src).
			Build()
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return w.fsError("cannot create attachment directory", target, err)
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return w.fsError("cannot create attachment", target, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return w.fsError("cannot copy attachment", target, err)
	}
	if err := out.Close(); err != nil {
		return w.fsError("cannot close attachment", target, err)
	}
	w.logger.Debug("Copied attachment", logfields.Attachment(rel), logfields.Path(target))
	return nil
}

// resolve maps a slash-separated relative path into the destination
// directory, refusing paths that would leave it.
func (w *Writer) resolve(rel string) (string, error) {
	clean := path.Clean("/" + strings.TrimSpace(rel))
	if clean == "/" || strings.Contains(rel, "\x00") || clean != "/"+strings.TrimLeft(rel, "/") {
		return "", errors.ValidationError(fmt.Sprintf("unsafe output path %q", rel)).
			WithSeverity(errors.SeverityError).
			WithContext("path", rel).
			Build()
	}
	return filepath.Join(w.dir, filepath.FromSlash(clean[1:])), nil
}

func (w *Writer) fsError(msg, target string, err error) error {
	return errors.FileSystemError(msg).
		WithCause(err).
		WithContext("path", target).
		Build()
}

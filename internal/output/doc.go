// Package output writes converted pages and their attachments below the
// destination directory.
//
// A page named "Dev/Setup" is written to <dir>/Dev/Setup.md and its
// attachments to <dir>/Dev/Setup/<file>. Pages may carry a YAML front matter
// block with a stable uid and a content fingerprint, and the destination can
// be committed to a git repository after a run.
package output

package trac

import (
	"crypto/sha1" //nolint:gosec // Trac's attachment layout is keyed by SHA-1
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
)

// AttachmentPath returns the location of a wiki attachment inside env.
// Trac 1.0 and later store files under hashed names; older environments use
// the quoted page and file names. The hashed layout wins when both exist or
// neither does.
func AttachmentPath(env, page, filename string) string {
	hashed := hashedAttachmentPath(env, page, filename)
	if _, err := os.Stat(hashed); err == nil {
		return hashed
	}
	legacy := legacyAttachmentPath(env, page, filename)
	if _, err := os.Stat(legacy); err == nil {
		return legacy
	}
	return hashed
}

func hashedAttachmentPath(env, page, filename string) string {
	pageHash := sha1Hex(page)
	return filepath.Join(env, "files", "attachments", "wiki",
		pageHash[:3], pageHash, sha1Hex(filename)+filepath.Ext(filename))
}

func legacyAttachmentPath(env, page, filename string) string {
	return filepath.Join(env, "attachments", "wiki",
		filepath.FromSlash(quote(page, true)), quote(filename, false))
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s)) //nolint:gosec // layout key, not a security boundary
	return hex.EncodeToString(sum[:])
}

// quote percent-encodes s the way Trac's unicode_quote does.
func quote(s string, keepSlash bool) string {
	const hexDigits = "0123456789ABCDEF"
	var b strings.Builder
	for _, c := range []byte(s) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '_', c == '.', c == '-', c == '~':
			b.WriteByte(c)
		case c == '/' && keepSlash:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hexDigits[c>>4])
			b.WriteByte(hexDigits[c&15])
		}
	}
	return b.String()
}

package convert

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder delimiters come from the Unicode private use area, which Trac
// pages do not contain.
const (
	placeholderOpen  = '\uE000'
	placeholderClose = '\uE001'

	// cellSeparator delimits table cells between the structure and
	// postprocess stages.
	cellSeparator = '\uE002'
)

var placeholderRe = regexp.MustCompile(`\x{E000}([0-9]+)\x{E001}`)

// maxRestoreDepth bounds nested placeholder expansion.
const maxRestoreDepth = 8

// Vault stores protected spans behind opaque placeholders.
type Vault struct {
	spans []string
}

// NewVault creates an empty vault.
func NewVault() *Vault {
	return &Vault{}
}

// Protect stores s and returns the placeholder standing in for it.
func (v *Vault) Protect(s string) string {
	v.spans = append(v.spans, s)
	return string(placeholderOpen) + strconv.Itoa(len(v.spans)-1) + string(placeholderClose)
}

// Len returns the number of stored spans.
func (v *Vault) Len() int {
	return len(v.spans)
}

func (v *Vault) truncate(n int) {
	if n < len(v.spans) {
		v.spans = v.spans[:n]
	}
}

// Lookup returns the span behind a placeholder that makes up all of s.
func (v *Vault) Lookup(s string) (string, bool) {
	m := placeholderRe.FindStringSubmatchIndex(s)
	if m == nil || m[0] != 0 || m[1] != len(s) {
		return "", false
	}
	i, err := strconv.Atoi(s[m[2]:m[3]])
	if err != nil || i >= len(v.spans) {
		return "", false
	}
	return v.spans[i], true
}

// IsBlock reports whether s is a single placeholder for a multi-line span.
func (v *Vault) IsBlock(s string) bool {
	span, ok := v.Lookup(strings.TrimSpace(s))
	return ok && strings.Contains(span, "\n")
}

// Restore replaces placeholders in s with their spans, including
// placeholders nested inside restored spans.
func (v *Vault) Restore(s string) string {
	for range maxRestoreDepth {
		if !strings.ContainsRune(s, placeholderOpen) {
			return s
		}
		s = placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
			i, err := strconv.Atoi(m[len(string(placeholderOpen)) : len(m)-len(string(placeholderClose))])
			if err != nil || i >= len(v.spans) {
				return m
			}
			return v.spans[i]
		})
	}
	return s
}

package convert

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVault_ProtectRestore(t *testing.T) {
	v := NewVault()
	a := v.Protect("`code`")
	b := v.Protect("[link](" + a + ")")

	assert.Equal(t, 2, v.Len())
	assert.NotContains(t, a, "code")
	assert.Equal(t, "x [link](`code`) y", v.Restore("x "+b+" y"))
}

func TestVault_Lookup(t *testing.T) {
	v := NewVault()
	p := v.Protect("line one\nline two")

	span, ok := v.Lookup(p)
	assert.True(t, ok)
	assert.Equal(t, "line one\nline two", span)

	_, ok = v.Lookup("x" + p)
	assert.False(t, ok)
	assert.True(t, v.IsBlock("  "+p))
	assert.False(t, v.IsBlock(v.Protect("inline")))
}

func TestVault_Truncate(t *testing.T) {
	v := NewVault()
	v.Protect("a")
	p := v.Protect("b")
	v.truncate(1)

	assert.Equal(t, 1, v.Len())
	assert.Equal(t, p, v.Restore(p), "dangling placeholders are left as is")
}

func TestVault_RestoreDepthBounded(t *testing.T) {
	v := NewVault()
	p := v.Protect("x")
	for range maxRestoreDepth + 2 {
		p = v.Protect("(" + p + ")")
	}
	out := v.Restore(p)
	assert.True(t, strings.ContainsRune(out, placeholderOpen))
}

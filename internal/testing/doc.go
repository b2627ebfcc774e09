// Package testing contains fixtures and assertions shared by trac2md tests:
// a builder for throwaway Trac environments and output tree assertions.
package testing

const (
	testDirPermissions  = 0o750
	testFilePermissions = 0o600
)

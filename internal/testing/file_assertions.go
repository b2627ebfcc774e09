package testing

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// FileAssertions checks the state of a converted output tree.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper rooted at baseDir.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(filepath.Join(fa.baseDir, relativePath)); err != nil {
		fa.t.Errorf("Expected file to exist: %s", relativePath)
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist.
func (fa *FileAssertions) AssertFileNotExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	if _, err := os.Stat(filepath.Join(fa.baseDir, relativePath)); err == nil {
		fa.t.Errorf("Expected file to not exist: %s", relativePath)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(relativePath, expectedContent string) *FileAssertions {
	fa.t.Helper()
	content := fa.read(relativePath)
	if !strings.Contains(content, expectedContent) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", relativePath, expectedContent, content)
	}
	return fa
}

// AssertFileEquals validates the exact content of a file.
func (fa *FileAssertions) AssertFileEquals(relativePath, expected string) *FileAssertions {
	fa.t.Helper()
	if content := fa.read(relativePath); content != expected {
		fa.t.Errorf("File %s mismatch\nwant:\n%s\ngot:\n%s", relativePath, expected, content)
	}
	return fa
}

// ListFiles returns the sorted slash-separated paths of all files below relativePath.
func (fa *FileAssertions) ListFiles(relativePath string) []string {
	fa.t.Helper()
	root := filepath.Join(fa.baseDir, relativePath)

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		fa.t.Logf("Failed to walk directory %s: %v", root, err)
		return nil
	}
	sort.Strings(files)
	return files
}

// GetFileContent reads and returns the content of a file.
func (fa *FileAssertions) GetFileContent(relativePath string) string {
	fa.t.Helper()
	return fa.read(relativePath)
}

func (fa *FileAssertions) read(relativePath string) string {
	fa.t.Helper()
	content, err := os.ReadFile(filepath.Join(fa.baseDir, relativePath))
	if err != nil {
		fa.t.Fatalf("Failed to read file %s: %v", relativePath, err)
	}
	return string(content)
}

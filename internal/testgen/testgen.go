// Package testgen provides utilities for generating test files (EPUB, PDF)
// with configurable metadata for testing ingest and maintenance.
package testgen

import (
	"os"
	"path/filepath"
	"testing"
)

// EPUBOptions configures the generated EPUB file.
type EPUBOptions struct {
	Title   string
	Authors []string
	// FileAs, when set, is written as the opf:file-as attribute of the
	// author at the same index.
	FileAs        []string
	Language      string // defaults to "en"
	Date          string
	Description   string
	Subjects      []string
	ISBN          string
	Series        string
	SeriesNumber  *float64
	HasCover      bool
	CoverMimeType string // "image/jpeg" or "image/png", defaults to "image/png"
	// CoverByHref writes the cover meta pointing at the manifest href
	// instead of the item id.
	CoverByHref bool
	// NoContainer omits META-INF/container.xml.
	NoContainer bool
}

// PDFOptions configures the generated PDF file.
type PDFOptions struct {
	PageCount int // defaults to 1
}

// TempDir creates a temporary directory for testing and registers cleanup.
// The directory is automatically removed when the test completes.
func TempDir(t *testing.T, pattern string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

// TempLibraryDir creates a temporary library directory structure for testing.
func TempLibraryDir(t *testing.T) string {
	t.Helper()
	return TempDir(t, "testgen-library-*")
}

// CreateSubDir creates a subdirectory (and its parents) within the given
// parent directory. Returns the full path to the created subdirectory.
func CreateSubDir(t *testing.T, parent, name string) string {
	t.Helper()
	dir := filepath.Join(parent, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create subdirectory %s: %v", dir, err)
	}
	return dir
}

// WriteFile creates a file with the given content in the specified directory.
// Returns the full path to the created file.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads and returns the contents of a file.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return data
}

// FloatPtr is a helper to create a pointer to a float64.
func FloatPtr(f float64) *float64 {
	return &f
}

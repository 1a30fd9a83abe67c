package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileReader reads small files (go.mod, generated outputs) and caches them until they change
type FileReader struct {
	contents *Cache[string, string]
}

// NewFileReader creates a reader with an empty cache
func NewFileReader() *FileReader {
	return &FileReader{contents: NewCache[string, string]()}
}

// ReadFile returns the file contents, served from cache while the file is unchanged
func (fr *FileReader) ReadFile(path string) (string, error) {
	if err := NotEmpty("file path")(path); err != nil {
		return "", err
	}
	clean := filepath.Clean(path)

	if cached, ok := fr.contents.Get(clean, clean); ok {
		return cached, nil
	}

	data, err := os.ReadFile(clean)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filepath.Base(clean), err)
	}

	content := string(data)
	// a file removed between read and stat is simply not cached
	_ = fr.contents.Set(clean, content, clean)
	return content, nil
}

// Invalidate drops the cached contents of path
func (fr *FileReader) Invalidate(path string) {
	fr.contents.Delete(filepath.Clean(path))
}

// CachedFiles returns how many files are currently cached
func (fr *FileReader) CachedFiles() int {
	return fr.contents.Size()
}

// Reset drops every cached file
func (fr *FileReader) Reset() {
	fr.contents.Clear()
}

package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileFilter decides whether a file entry is selected
type FileFilter func(path string, entry fs.DirEntry) bool

// DirectoryFilter decides whether a directory is descended into
type DirectoryFilter func(path string, entry fs.DirEntry) bool

// FileProcessor walks source trees looking for Go packages and generated outputs
type FileProcessor struct {
	isGenerated func(name string) bool
	reader      *FileReader
}

// NewFileProcessor creates a processor that treats base names accepted by
// isGenerated as the generator's output files
func NewFileProcessor(isGenerated func(name string) bool) *FileProcessor {
	return &FileProcessor{isGenerated: isGenerated, reader: NewFileReader()}
}

// Reader returns the cached reader used for file contents
func (fp *FileProcessor) Reader() *FileReader {
	return fp.reader
}

// SourceFileFilter selects hand-written Go files: no tests, no generated output
func (fp *FileProcessor) SourceFileFilter() FileFilter {
	return func(_ string, entry fs.DirEntry) bool {
		if entry.IsDir() {
			return false
		}
		name := entry.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!fp.isGenerated(name)
	}
}

// GeneratedFileFilter selects the generator's output files
func (fp *FileProcessor) GeneratedFileFilter() FileFilter {
	return func(_ string, entry fs.DirEntry) bool {
		return !entry.IsDir() && fp.isGenerated(entry.Name())
	}
}

// DefaultDirectoryFilter skips hidden, vendored and tool directories
func DefaultDirectoryFilter() DirectoryFilter {
	skip := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"_examples":    true,
	}

	return func(_ string, entry fs.DirEntry) bool {
		if !entry.IsDir() {
			return true
		}
		name := entry.Name()
		if name != "." && name != ".." && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			return false
		}
		return !skip[name]
	}
}

// WalkFiles returns every file under root accepted by files, skipping directories rejected by dirs.
// The root itself is always walked.
func (fp *FileProcessor) WalkFiles(root string, files FileFilter, dirs DirectoryFilter) ([]string, error) {
	var matched []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && dirs != nil && !dirs(path, entry) {
				return filepath.SkipDir
			}
			return nil
		}
		if files == nil || files(path, entry) {
			matched = append(matched, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return matched, nil
}

// PackageDirs returns the directories under roots that contain hand-written Go files, each once
func (fp *FileProcessor) PackageDirs(roots ...string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	for _, root := range roots {
		files, err := fp.WalkFiles(root, fp.SourceFileFilter(), DefaultDirectoryFilter())
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			dir := filepath.Dir(file)
			abs, err := filepath.Abs(dir)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
			}
			if !seen[abs] {
				seen[abs] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs, nil
}

// HasGoFiles reports whether dir directly contains hand-written Go files
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	filter := fp.SourceFileFilter()
	for _, entry := range entries {
		if filter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}
	return false, nil
}

// GeneratedFiles returns every generated output file under roots
func (fp *FileProcessor) GeneratedFiles(roots ...string) ([]string, error) {
	var found []string
	for _, root := range roots {
		files, err := fp.WalkFiles(root, fp.GeneratedFileFilter(), DefaultDirectoryFilter())
		if err != nil {
			return nil, err
		}
		found = append(found, files...)
	}
	return found, nil
}

// GeneratedFilesIn returns the generated output files directly inside dir
func (fp *FileProcessor) GeneratedFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	filter := fp.GeneratedFileFilter()
	var found []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if filter(path, entry) {
			found = append(found, path)
		}
	}
	return found, nil
}

// HasPrefixLine reports whether any line of the file at path starts with prefix
func (fp *FileProcessor) HasPrefixLine(path, prefix string) (bool, error) {
	content, err := fp.reader.ReadFile(path)
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), prefix) {
			return true, nil
		}
	}
	return false, nil
}

// RemoveFiles deletes paths and returns the ones actually removed
func (fp *FileProcessor) RemoveFiles(paths []string) ([]string, error) {
	var removed []string
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		fp.reader.Invalidate(path)
		removed = append(removed, path)
	}
	return removed, nil
}

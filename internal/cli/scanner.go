package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/utils"
)

// LoadRoot is one package load: a directory plus the pattern evaluated in it
type LoadRoot struct {
	Dir       string // absolute directory
	Pattern   string // "." or "./..."
	Recursive bool
}

// DirectoryScanner resolves directory arguments into load roots and package directories
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(models.IsGeneratedFileName),
	}
}

// Roots turns arguments such as "./..." or "internal/models" into load roots.
// Duplicate roots are dropped.
func (s *DirectoryScanner) Roots(args []string) ([]LoadRoot, error) {
	seen := make(map[LoadRoot]bool)
	var roots []LoadRoot

	for _, arg := range args {
		base, recursive := splitPattern(arg)

		abs, err := filepath.Abs(base)
		if err != nil {
			return nil, errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", base), err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.WrapFileSystemError("stat", abs, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", arg)
		}

		root := LoadRoot{Dir: abs, Pattern: ".", Recursive: recursive}
		if recursive {
			root.Pattern = "./..."
		}
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	return roots, nil
}

// ScanDirectories returns the directories holding Go sources under the given arguments
func (s *DirectoryScanner) ScanDirectories(args []string) ([]string, error) {
	roots, err := s.Roots(args)
	if err != nil {
		return nil, err
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, root := range roots {
		var found []string
		if root.Recursive {
			found, err = s.fileProcessor.PackageDirs(root.Dir)
			if err != nil {
				return nil, err
			}
		} else {
			ok, err := s.fileProcessor.HasGoFiles(root.Dir)
			if err != nil {
				return nil, errors.WrapFileSystemError("read", root.Dir, err)
			}
			if ok {
				found = []string{root.Dir}
			}
		}
		for _, dir := range found {
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs, nil
}

// splitPattern separates a trailing "/..." from a directory argument
func splitPattern(arg string) (string, bool) {
	slashed := filepath.ToSlash(arg)
	switch {
	case slashed == "...":
		return ".", true
	case strings.HasSuffix(slashed, "/..."):
		base := strings.TrimSuffix(slashed, "/...")
		if base == "" {
			base = "."
		}
		return filepath.FromSlash(base), true
	default:
		return arg, false
	}
}

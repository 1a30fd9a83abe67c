package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
)

// ModuleInfo is the subset of a go.mod the generator cares about
type ModuleInfo struct {
	Path      string // module path
	GoVersion string // go directive, empty when absent
	Dir       string // directory holding go.mod
}

// AtLeast reports whether the module's go directive is at least version (e.g. "1.21").
// A module without a go directive is assumed to be too old.
func (m ModuleInfo) AtLeast(version string) bool {
	if m.GoVersion == "" {
		return false
	}
	return semver.Compare("v"+m.GoVersion, "v"+version) >= 0
}

// GoModParser reads go.mod files through a cached FileReader
type GoModParser struct {
	fileReader *FileReader
}

// NewGoModParser creates a parser sharing reader's cache
func NewGoModParser(reader *FileReader) *GoModParser {
	return &GoModParser{fileReader: reader}
}

// Parse reads and parses the go.mod at path
func (p *GoModParser) Parse(goModPath string) (ModuleInfo, error) {
	clean := filepath.Clean(goModPath)
	if filepath.Base(clean) != "go.mod" {
		return ModuleInfo{}, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := p.fileReader.ReadFile(clean)
	if err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to read go.mod file: %w", err)
	}

	mf, err := modfile.ParseLax(clean, []byte(content), nil)
	if err != nil {
		return ModuleInfo{}, fmt.Errorf("failed to parse go.mod file: %w", err)
	}
	if mf.Module == nil {
		return ModuleInfo{}, fmt.Errorf("no module declaration found in %s", clean)
	}

	info := ModuleInfo{Path: mf.Module.Mod.Path, Dir: filepath.Dir(clean)}
	if mf.Go != nil {
		info.GoVersion = mf.Go.Version
	}
	return info, nil
}

// Find walks up from startDir to the nearest go.mod
func (p *GoModParser) Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for {
		candidate := filepath.Join(dir, "go.mod")
		if stat, err := os.Stat(candidate); err == nil && !stat.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod file not found above %s", startDir)
		}
		dir = parent
	}
}

// Module finds and parses the go.mod governing dir
func (p *GoModParser) Module(dir string) (ModuleInfo, error) {
	path, err := p.Find(dir)
	if err != nil {
		return ModuleInfo{}, err
	}
	return p.Parse(path)
}

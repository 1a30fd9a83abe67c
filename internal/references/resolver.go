// Package references resolves the baseline packages a generated compilation
// unit is analysed against: the core runtime, the sequence operations package
// and the platform base package.
package references

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	CoreImportPath  = "runtime"
	QueryImportPath = "slices"
	BaseImportPath  = "builtin"

	baseFile = "builtin/builtin.go"
)

// Reference is a resolved baseline package
type Reference struct {
	ImportPath string // import path, e.g. slices
	Dir        string // directory holding the package sources
	File       string // file the reference was located by, when resolved by scanning
}

// Set is the immutable result of one resolution. Absent references are nil.
type Set struct {
	Core  *Reference
	Query *Reference
	Base  *Reference
	Roots []string // trusted roots that were scanned for the base package
}

// Default returns the process-wide reference set, resolved on first use
var Default = sync.OnceValue(func() *Set {
	return Resolve(TrustedRoots())
})

// TrustedRoots returns the source roots of the active Go installation (GOROOT/src, GOPATH/src)
func TrustedRoots() []string {
	return build.Default.SrcDirs()
}

// Resolve looks up the baseline references. It never fails: a reference that
// cannot be found is left nil and reported by Missing.
func Resolve(roots []string) *Set {
	return &Set{
		Core:  lookup(CoreImportPath),
		Query: lookup(QueryImportPath),
		Base:  scan(roots),
		Roots: append([]string(nil), roots...),
	}
}

// ImportPaths returns the import paths of every resolved reference
func (s *Set) ImportPaths() []string {
	var paths []string
	for _, ref := range []*Reference{s.Core, s.Query, s.Base} {
		if ref != nil {
			paths = append(paths, ref.ImportPath)
		}
	}
	return paths
}

// Missing returns the import paths of references that could not be resolved
func (s *Set) Missing() []string {
	var missing []string
	if s.Core == nil {
		missing = append(missing, CoreImportPath)
	}
	if s.Query == nil {
		missing = append(missing, QueryImportPath)
	}
	if s.Base == nil {
		missing = append(missing, BaseImportPath)
	}
	return missing
}

// QueryPath returns the sequence operations import path, falling back to the
// well-known path when the reference is absent
func (s *Set) QueryPath() string {
	if s.Query != nil {
		return s.Query.ImportPath
	}
	return QueryImportPath
}

func lookup(importPath string) *Reference {
	pkg, err := build.Default.Import(importPath, "", build.FindOnly)
	if err != nil || pkg.Dir == "" {
		return nil
	}
	return &Reference{ImportPath: importPath, Dir: pkg.Dir}
}

// scan walks the trusted roots in order. An entry may be the base file itself
// or a source root containing it.
func scan(roots []string) *Reference {
	for _, root := range roots {
		if root == "" {
			continue
		}
		candidate := root
		if !strings.HasSuffix(filepath.ToSlash(root), baseFile) {
			candidate = filepath.Join(root, filepath.FromSlash(baseFile))
		}
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		return &Reference{
			ImportPath: BaseImportPath,
			Dir:        filepath.Dir(candidate),
			File:       candidate,
		}
	}
	return nil
}

// Package syntax provides the isolated scope the pipeline uses to build
// generated Go statements.
package syntax

import (
	"fmt"
	"go/parser"
	"go/token"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/references"
)

// Workspace is a throwaway analysis scope for one generation pass. It is
// seeded with the imports visible to the annotated declaration plus the
// baseline references, and only hands out syntax builders.
type Workspace struct {
	fset  *token.FileSet
	names map[string]string // package name in scope -> import path

	mu       sync.Mutex
	reserved map[string]bool   // identifiers generated code cannot use as package names
	local    map[string]string // standard import path -> name used by generated code
}

// NewWorkspace creates a workspace seeded with the declaration's imports and the baseline references
func NewWorkspace(seed []models.ImportDirective, refs *references.Set) *Workspace {
	w := &Workspace{
		fset:  token.NewFileSet(),
		names:    make(map[string]string),
		reserved: make(map[string]bool),
		local:    make(map[string]string),
	}
	for _, imp := range seed {
		if imp.Alias == "_" || imp.Alias == "." {
			continue
		}
		w.names[importName(imp)] = imp.Path
	}
	if refs != nil {
		for _, p := range refs.ImportPaths() {
			name := path.Base(p)
			if _, taken := w.names[name]; !taken {
				w.names[name] = p
			}
		}
	}
	return w
}

// FileSet returns the workspace's private file set
func (w *Workspace) FileSet() *token.FileSet {
	return w.fset
}

// Builder returns a statement builder bound to the workspace
func (w *Workspace) Builder() *Builder {
	return &Builder{ws: w}
}

// Reserve marks identifiers that are in scope where generated statements run,
// such as parameter names and package-level declarations. Name never hands
// them out.
func (w *Workspace) Reserve(names ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, name := range names {
		if name != "" && name != "_" {
			w.reserved[name] = true
		}
	}
}

// Name returns the identifier generated code uses for a standard package.
// A seed import claiming the package's default name under another path, or a
// reserved identifier, forces an std-prefixed alias.
func (w *Workspace) Name(importPath string) string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if name, ok := w.local[importPath]; ok {
		return name
	}
	name := path.Base(importPath)
	for w.taken(name, importPath) {
		name = "std" + name
	}
	w.local[importPath] = name
	return name
}

func (w *Workspace) taken(name, importPath string) bool {
	if w.reserved[name] {
		return true
	}
	if claimed, ok := w.names[name]; ok && claimed != importPath {
		return true
	}
	for p, used := range w.local {
		if used == name && p != importPath {
			return true
		}
	}
	return false
}

// Imports returns directives for the given standard packages using the names
// chosen by Name, in the given order
func (w *Workspace) Imports(importPaths ...string) []models.ImportDirective {
	directives := make([]models.ImportDirective, 0, len(importPaths))
	for _, p := range importPaths {
		name := w.Name(p)
		directive := models.ImportDirective{Path: p}
		if name != path.Base(p) {
			directive.Alias = name
		}
		directives = append(directives, directive)
	}
	return directives
}

// Seeded returns the import paths visible in the workspace, sorted
func (w *Workspace) Seeded() []string {
	paths := make([]string, 0, len(w.names))
	for _, p := range w.names {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Validate checks that the statements form a syntactically valid function body
func (w *Workspace) Validate(stmts []models.Statement) error {
	var src strings.Builder
	src.WriteString("package p\nfunc _() {\n")
	for _, stmt := range stmts {
		src.WriteString(string(stmt))
		src.WriteString("\n")
	}
	src.WriteString("}\n")

	if _, err := parser.ParseFile(w.fset, "workspace.go", src.String(), parser.SkipObjectResolution); err != nil {
		return fmt.Errorf("invalid generated statements: %w", err)
	}
	return nil
}

func importName(imp models.ImportDirective) string {
	if imp.Alias != "" {
		return imp.Alias
	}
	base := path.Base(imp.Path)
	// gopkg.in/yaml.v3 and github.com/x/y/v2 style paths
	if i := strings.Index(base, ".v"); i > 0 {
		base = base[:i]
	}
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(imp.Path))
	}
	return strings.ReplaceAll(base, "-", "_")
}

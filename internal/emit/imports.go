package emit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/mapgen/internal/models"
)

// ImportManager collects and deduplicates the imports of a generated file
type ImportManager struct {
	seen    map[models.ImportDirective]bool
	imports []models.ImportDirective
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{seen: make(map[models.ImportDirective]bool)}
}

// Add records import directives, ignoring exact duplicates
func (im *ImportManager) Add(directives ...models.ImportDirective) {
	for _, d := range directives {
		if d.Path == "" || im.seen[d] {
			continue
		}
		im.seen[d] = true
		im.imports = append(im.imports, d)
	}
}

// Len returns the number of distinct imports
func (im *ImportManager) Len() int {
	return len(im.imports)
}

// GenerateImports renders the import block: standard library first, then the
// rest, each group sorted by path
func (im *ImportManager) GenerateImports() string {
	if len(im.imports) == 0 {
		return ""
	}

	var std, other []models.ImportDirective
	for _, d := range im.imports {
		if isStandard(d.Path) {
			std = append(std, d)
		} else {
			other = append(other, d)
		}
	}
	byPath := func(list []models.ImportDirective) {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Path != list[j].Path {
				return list[i].Path < list[j].Path
			}
			return list[i].Alias < list[j].Alias
		})
	}
	byPath(std)
	byPath(other)

	var b strings.Builder
	b.WriteString("import (\n")
	for _, d := range std {
		fmt.Fprintf(&b, "\t%s\n", d)
	}
	if len(std) > 0 && len(other) > 0 {
		b.WriteString("\n")
	}
	for _, d := range other {
		fmt.Fprintf(&b, "\t%s\n", d)
	}
	b.WriteString(")\n")
	return b.String()
}

// isStandard reports whether the path looks like a standard library package
func isStandard(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

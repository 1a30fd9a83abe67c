package models

import (
	"path/filepath"
	"strings"
)

// GeneratedFile represents a generated mapper file for one source file
type GeneratedFile struct {
	PackageName string   // name of the package
	FilePath    string   // path where the file should be written
	Content     string   // generated Go code content
	Types       []string // names of the synthesized types in the file
	Unsupported int      // number of methods generated with the unsupported marker
}

// PackageMetadata represents all mapping interfaces found in a package
type PackageMetadata struct {
	PackageName      string                  // name of the Go package
	PackagePath      string                  // file system path to the package
	ImportPath       string                  // import path of the package, when known
	Declarations     []*AnnotatedDeclaration // annotated interfaces in source order
	TypeErrors       []string                // type errors tolerated while loading
	SourceFiles      []string                // hand-written files that were loaded
	BuildConstraints map[string]string       // source file path -> its //go:build line
}

// GeneratedFilePrefix starts the name of every file the generator writes
const GeneratedFilePrefix = "mapgen_"

// GeneratedFileFor returns the output path for the mapping interfaces of the
// source file at path. The name keeps the source's _GOOS/_GOARCH suffix so
// the output is built under the same file name constraints.
func GeneratedFileFor(source string) string {
	return filepath.Join(filepath.Dir(source), GeneratedFilePrefix+filepath.Base(source))
}

// IsGeneratedFileName reports whether a base file name follows the generated
// output naming. The content header decides whether the file is really ours.
func IsGeneratedFileName(name string) bool {
	return strings.HasPrefix(name, GeneratedFilePrefix) &&
		strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go")
}

// SourceFileFor returns the source path a generated file name was derived from
func SourceFileFor(generated string) (string, bool) {
	base := filepath.Base(generated)
	if !IsGeneratedFileName(base) {
		return "", false
	}
	return filepath.Join(filepath.Dir(generated), strings.TrimPrefix(base, GeneratedFilePrefix)), true
}

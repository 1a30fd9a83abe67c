package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mapgen/internal/models"
)

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func TestLoadDirectory(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": "module example.com/app\n\ngo 1.22\n",
		"users/mappers.go": `package users

import "strings"

type UserDto struct{ Name string }
type User struct{ Name string }

//mapgen::mapper
type IUserMapper interface {
	Map(source UserDto) User
}

func normalize(s string) string { return strings.TrimSpace(s) }
`,
		// stale output that no longer compiles
		"users/mapgen_mappers.go": `// Code generated by mapgen v0.0.1. DO NOT EDIT.

package users

var _ IUserMapper = (*Missing)(nil)
`,
	})

	pkgs, err := NewParser().LoadDirectory(context.Background(), dir, "./...")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs[0]
	assert.Equal(t, "users", pkg.PackageName)
	assert.Equal(t, "example.com/app/users", pkg.ImportPath)
	assert.Equal(t, filepath.Join(dir, "users"), pkg.PackagePath)
	assert.Empty(t, pkg.TypeErrors)

	require.Len(t, pkg.Declarations, 1)
	decl := pkg.Declarations[0]
	assert.Equal(t, "IUserMapper", decl.Name)
	assert.Equal(t, []models.ImportDirective{{Path: "strings"}}, ContextFor(decl).Imports())
	require.NotNil(t, decl.Methods()[0].Func)
	assert.Equal(t, []string{filepath.Join(dir, "users", "mappers.go")}, pkg.SourceFiles)
}

func TestLoadDirectory_DotImportsAndConstraints(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":           "module example.com/app\n\ngo 1.22\n",
		"dto/dto.go":       "package dto\n\ntype UserDto struct{ Name string }\n",
		"shared/shared.go": "package shared\n\nfunc Trim(s string) string { return s }\n",
		"users/mappers.go": `//go:build !mapgen_never

package users

import (
	. "example.com/app/dto"
	. "example.com/app/shared"
)

type User struct{ Name string }

//mapgen::mapper
type IUserMapper interface {
	Map(source UserDto) User
}

//mapgen::mapper
type INameMapper interface {
	Name(u User) string
}

func clean(u User) string { return Trim(u.Name) }
`,
	})

	pkgs, err := NewParser().LoadDirectory(context.Background(), dir, "./users")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs[0]
	assert.Empty(t, pkg.TypeErrors)
	source := filepath.Join(dir, "users", "mappers.go")
	assert.Equal(t, map[string]string{source: "//go:build !mapgen_never"}, pkg.BuildConstraints)

	require.Len(t, pkg.Declarations, 2)
	assert.Equal(t, []models.ImportDirective{{Path: "example.com/app/dto", Alias: "."}}, ContextFor(pkg.Declarations[0]).Imports())
	assert.Empty(t, ContextFor(pkg.Declarations[1]).Imports())
}

func TestMaskGenerated_KeepsBuildConstraint(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"users/mapgen_users_linux.go": "// Code generated by mapgen v0.0.1. DO NOT EDIT.\n\n//go:build linux\n\npackage users\n\nvar broken = missing\n",
		"users/mapgen_notes.go":       "package users\n\n// hand-written\n",
	})

	overlay := maskGenerated(dir)
	assert.Equal(t, map[string][]byte{
		filepath.Join(dir, "users", "mapgen_users_linux.go"): []byte("//go:build linux\n\npackage users\n"),
	}, overlay)
}

func TestLoadDirectory_Cancelled(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":  "module example.com/app\n\ngo 1.22\n",
		"main.go": "package main\n\nfunc main() {}\n",
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().LoadDirectory(ctx, dir)
	assert.Error(t, err)
}

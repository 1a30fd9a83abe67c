package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/utils"
)

// typeCheck loads every package under dir with the generated files in place
// and fails on any load or type error
func typeCheck(t *testing.T, dir string) {
	t.Helper()
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps,
		Dir: dir,
	}
	pkgs, err := packages.Load(cfg, "./...")
	require.NoError(t, err)

	var problems []string
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			problems = append(problems, e.Error())
		}
	})
	require.Empty(t, problems, "generated code does not type-check")
}

const (
	xDto = "package dto\n\ntype UserDto struct{ Name string }\n"
	yDto = "package dto\n\ntype OrderDto struct{ ID int }\n"
)

func TestGenerator_OneFilePerSource(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":       testGoMod,
		"x/dto/dto.go": xDto,
		"y/dto/dto.go": yDto,
		"svc/a.go": `package svc

import "example.com/app/x/dto"

type User struct{ Name string }

//mapgen::mapper
type IUserMapper interface {
	Map(source dto.UserDto) User
}
`,
		"svc/b.go": `package svc

import "example.com/app/y/dto"

type Order struct{ ID int }

//mapgen::mapper
type IOrderMapper interface {
	Map(source dto.OrderDto) Order
}
`,
	})
	first := filepath.Join(dir, "svc", "mapgen_a.go")
	second := filepath.Join(dir, "svc", "mapgen_b.go")
	config := Config{Directories: []string{dir + "/..."}}

	gen := NewGenerator(false)
	require.NoError(t, gen.Run(context.Background(), config))

	a := readFile(t, first)
	assert.Contains(t, a, `"example.com/app/x/dto"`)
	assert.NotContains(t, a, `"example.com/app/y/dto"`)
	assert.Contains(t, a, "func (*UserMapper) Map(source dto.UserDto) User {")
	assert.NotContains(t, a, "OrderMapper")

	b := readFile(t, second)
	assert.Contains(t, b, `"example.com/app/y/dto"`)
	assert.NotContains(t, b, `"example.com/app/x/dto"`)
	assert.Contains(t, b, "func (*OrderMapper) Map(source dto.OrderDto) Order {")

	summary := gen.GetSummary()
	assert.Equal(t, 1, summary.PackagesGenerated)
	assert.Equal(t, 2, summary.TypesGenerated)
	assert.Equal(t, []string{first, second}, summary.GeneratedFiles)
	typeCheck(t, dir)

	t.Run("source without mappers loses its output", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "svc", "b.go"), []byte("package svc\n\ntype Order struct{ ID int }\n"), 0644))
		require.NoError(t, gen.Run(context.Background(), config))

		summary := gen.GetSummary()
		assert.Equal(t, []string{first}, summary.UnchangedFiles)
		assert.Equal(t, []string{second}, summary.RemovedFiles)
		assert.NoFileExists(t, second)
		typeCheck(t, dir)
	})
}

func TestGenerator_ImportsCompile(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":       testGoMod,
		"x/dto/dto.go": xDto,
		"y/dto/dto.go": yDto,
		"svc/accounts.go": `package svc

import (
	. "example.com/app/x/dto"
	ydto "example.com/app/y/dto"
)

type Account struct {
	Name string
	Tags []string
}

type Tagged struct {
	Tags []string
}

//mapgen::mapper
type IAccountMapper interface {
	FromUser(source UserDto) Account
	FromOrder(source ydto.OrderDto) Account
	Describe(fmt string) error
	Copy(slices Tagged) Account
}
`,
		"svc/counts.go": `package svc

import . "example.com/app/x/dto"

var guest = UserDto{Name: "guest"}

//mapgen::mapper
type ICountMapper interface {
	Count(items []string) int
}
`,
	})

	gen := NewGenerator(false)
	require.NoError(t, gen.Run(context.Background(), Config{Directories: []string{dir + "/..."}}))
	assert.Equal(t, 3, gen.GetSummary().UnsupportedMethods)

	accounts := readFile(t, filepath.Join(dir, "svc", "mapgen_accounts.go"))
	assert.Contains(t, accounts, `. "example.com/app/x/dto"`)
	assert.Contains(t, accounts, `ydto "example.com/app/y/dto"`)
	assert.Contains(t, accounts, "result.Name = source.Name")
	assert.Contains(t, accounts, "result.Tags = stdslices.Clone(slices.Tags)")
	assert.Contains(t, accounts, "panic(stdfmt.Errorf(")

	counts := readFile(t, filepath.Join(dir, "svc", "mapgen_counts.go"))
	assert.NotContains(t, counts, "example.com/app/x/dto")
	assert.Contains(t, counts, "'Count' method signature is not supported by mapgen")

	typeCheck(t, dir)
}

func TestGenerator_BuildConstraints(t *testing.T) {
	generated := generatedMarker + " v0.0.1. DO NOT EDIT.\n\n"
	dir := writeModule(t, map[string]string{
		"go.mod": testGoMod,
		"svc/on.go": `//go:build !mapgen_never

package svc

type Item struct{ Name string }
type ItemDto struct{ Name string }

//mapgen::mapper
type IItemMapper interface {
	Map(source ItemDto) Item
}
`,
		"svc/off.go": `//go:build mapgen_never

package svc

//mapgen::mapper
type IOffMapper interface {
	Map(source ItemDto) Item
}
`,
		"svc/mapgen_off.go":  generated + "//go:build mapgen_never\n\npackage svc\n",
		"svc/mapgen_gone.go": generated + "package svc\n",
	})

	gen := NewGenerator(false)
	require.NoError(t, gen.Run(context.Background(), Config{Directories: []string{filepath.Join(dir, "svc")}}))

	on := readFile(t, filepath.Join(dir, "svc", "mapgen_on.go"))
	assert.True(t, strings.HasPrefix(on, generatedMarker), on)
	assert.Contains(t, on, "\n\n//go:build !mapgen_never\n\npackage svc\n")

	assert.FileExists(t, filepath.Join(dir, "svc", "mapgen_off.go"))
	assert.NoFileExists(t, filepath.Join(dir, "svc", "mapgen_gone.go"))
	assert.Equal(t, []string{filepath.Join(dir, "svc", "mapgen_gone.go")}, gen.GetSummary().RemovedFiles)
	typeCheck(t, dir)
}

func TestGenerator_TypeNameClashAcrossFiles(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod": testGoMod,
		"svc/a.go": `package svc

//mapgen::mapper -Name=Shared
type IFirst interface {
	Run(n int) int
}
`,
		"svc/b.go": `package svc

//mapgen::mapper -Name=Shared
type ISecond interface {
	Run(n int) int
}
`,
	})

	err := NewGenerator(false).Run(context.Background(), Config{Directories: []string{filepath.Join(dir, "svc")}})
	require.Error(t, err)

	var genErr *models.GeneratorError
	require.True(t, stderrors.As(err, &genErr))
	assert.Equal(t, models.ErrorTypeGeneration, genErr.Type)
	assert.Contains(t, genErr.Message, "mapper type Shared is generated for both mapgen_a.go and mapgen_b.go")
	assert.NoFileExists(t, filepath.Join(dir, "svc", "mapgen_a.go"))
}

func TestGenerator_ReleasesFileCache(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":         testGoMod,
		"users/users.go": userMappers,
	})

	gen := NewGenerator(false)
	require.NoError(t, gen.Run(context.Background(), Config{Directories: []string{dir + "/..."}}))
	require.NoError(t, gen.Run(context.Background(), Config{Directories: []string{dir + "/..."}}))
	assert.Zero(t, gen.files.Reader().CachedFiles())
}

func TestGenerator_ReportsFilesPerPackage(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":         testGoMod,
		"users/users.go": userMappers,
	})

	var out bytes.Buffer
	d := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	d.SetOutput(&out, &out)

	gen := NewGeneratorWithDiagnostics(false, d, nil)
	require.NoError(t, gen.Run(context.Background(), Config{Directories: []string{dir + "/..."}}))
	assert.Contains(t, out.String(), "✓ example.com/app/users: 1 mappers\n  ✏ Writing mapgen_users.go (1)\n")

	out.Reset()
	require.NoError(t, gen.Run(context.Background(), Config{Directories: []string{dir + "/..."}}))
	assert.Contains(t, out.String(), "✓ example.com/app/users: 1 mappers\n  ✓ mapgen_users.go (1, unchanged)\n")
}

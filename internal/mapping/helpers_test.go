package mapping

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toyz/mapgen/internal/models"
)

// typedMethods type-checks src (which must not import anything) and returns
// the methods of the named interface with type information attached.
func typedMethods(t *testing.T, src, iface string) map[string]*models.MethodSignature {
	t.Helper()

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "mappers.go", src, parser.SkipObjectResolution)
	require.NoError(t, err)

	pkg, err := (&types.Config{}).Check("example.com/mappers", fset, []*ast.File{file}, nil)
	require.NoError(t, err)

	obj := pkg.Scope().Lookup(iface)
	require.NotNil(t, obj, "interface %s not found", iface)
	it, ok := obj.Type().Underlying().(*types.Interface)
	require.True(t, ok)

	qualifier := types.RelativeTo(pkg)
	methods := make(map[string]*models.MethodSignature)
	for i := 0; i < it.NumExplicitMethods(); i++ {
		fn := it.ExplicitMethod(i)
		sig := fn.Type().(*types.Signature)
		m := &models.MethodSignature{Name: fn.Name(), Variadic: sig.Variadic(), Func: fn}
		for j := 0; j < sig.Params().Len(); j++ {
			p := sig.Params().At(j)
			m.Params = append(m.Params, models.Parameter{Name: p.Name(), Type: types.TypeString(p.Type(), qualifier)})
		}
		for j := 0; j < sig.Results().Len(); j++ {
			r := sig.Results().At(j)
			m.Results = append(m.Results, models.Parameter{Name: r.Name(), Type: types.TypeString(r.Type(), qualifier)})
		}
		methods[fn.Name()] = m
	}
	return methods
}

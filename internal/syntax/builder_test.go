package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mapgen/internal/models"
)

func TestBuilder_Unsupported(t *testing.T) {
	b := NewWorkspace(nil, nil).Builder()

	stmt := b.Unsupported("mapgen", "Map")
	assert.Equal(t,
		models.Statement(`panic(fmt.Errorf("%w: %s", errors.ErrUnsupported, "'Map' method signature is not supported by mapgen"))`),
		stmt)
	require.NoError(t, NewWorkspace(nil, nil).Validate([]models.Statement{stmt}))
}

func TestBuilder_UnsupportedWithAliases(t *testing.T) {
	ws := NewWorkspace([]models.ImportDirective{{Alias: "errors", Path: "github.com/pkg/errors"}}, nil)

	stmt := ws.Builder().Unsupported("mapgen", "Convert")
	assert.Contains(t, string(stmt), "stderrors.ErrUnsupported")
	assert.Contains(t, string(stmt), "fmt.Errorf")
}

func TestBuilder_Statements(t *testing.T) {
	b := NewWorkspace(nil, nil).Builder()

	assert.Equal(t, models.Statement("var out User"), b.Declare("out", "User"))
	assert.Equal(t, models.Statement("out := &User{}"), b.Define("out", "&User{}"))
	assert.Equal(t, models.Statement("out.Name = in.Name"), b.Assign("out.Name", "in.Name"))
	assert.Equal(t, models.Statement("return"), b.Return())
	assert.Equal(t, models.Statement("return out, nil"), b.Return("out", "nil"))
	assert.Equal(t, "slices.Clone(in.Tags)", b.Call("slices", "Clone", "in.Tags"))
	assert.Equal(t,
		models.Statement("if in == nil {\nreturn nil\n}"),
		b.If("in == nil", b.Return("nil")))
}

func TestUnsupportedMessage(t *testing.T) {
	assert.Equal(t, "'Map' method signature is not supported by mapgen", UnsupportedMessage("mapgen", "Map"))
}

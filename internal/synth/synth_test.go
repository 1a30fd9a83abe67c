package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/mapgen/internal/mapping"
	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/syntax"
)

var identity = models.GeneratorIdentity{Name: "mapgen", Version: "v1.2.3"}

func builder() *syntax.Builder {
	return syntax.NewWorkspace(nil, nil).Builder()
}

func always(body ...models.Statement) mapping.Decider {
	return mapping.DeciderFuncs{
		CanHandleFunc: func(*models.MethodSignature) bool { return true },
		SynthesizeFunc: func(*models.MethodSignature, *syntax.Builder) []models.Statement {
			return body
		},
	}
}

func mapMethod(name string) *models.MethodSignature {
	return &models.MethodSignature{
		Name:    name,
		Params:  []models.Parameter{{Name: "source", Type: "UserDto"}},
		Results: []models.Parameter{{Type: "User"}},
	}
}

func TestSynthesizeBody_Verbatim(t *testing.T) {
	body := []models.Statement{"var result User", "result.Name = source.Name", "return result"}

	got := SynthesizeBody(mapMethod("Map"), always(body...), builder(), identity)
	assert.Equal(t, body, got)
}

func TestSynthesizeBody_Unsupported(t *testing.T) {
	for _, d := range []mapping.Decider{mapping.NeverDecider{}, nil} {
		got := SynthesizeBody(mapMethod("Map"), d, builder(), identity)
		require.Len(t, got, 1)
		assert.Contains(t, string(got[0]), "'Map' method signature is not supported by mapgen")
		assert.Contains(t, string(got[0]), "errors.ErrUnsupported")
	}
}

func TestSynthesizer_Method(t *testing.T) {
	s := New(mapping.NeverDecider{}, builder(), identity, nil)
	method := mapMethod("Convert")

	got := s.Method(method)
	assert.False(t, got.Supported)
	assert.Equal(t, *method, got.Signature)

	got.Signature.Params[0].Name = "changed"
	assert.Equal(t, "source", method.Params[0].Name)
}

func TestSynthesizer_Type(t *testing.T) {
	decl := &models.AnnotatedDeclaration{
		Name:       "IPageMapper",
		TypeParams: []models.TypeParam{{Name: "T", Constraint: "any"}, {Name: "K", Constraint: "comparable"}},
		Members: []models.Member{
			{Kind: models.MemberMethod, Method: mapMethod("First")},
			{Kind: models.MemberEmbedded, Source: "fmt.Stringer"},
			{Kind: models.MemberMethod, Method: mapMethod("Second")},
		},
	}

	s := New(always("return User{}"), builder(), identity, nil)
	typ := s.Type(decl, "PageMapper")

	assert.Equal(t, "PageMapper", typ.Name)
	assert.Equal(t, models.TypeRef{Name: "IPageMapper", TypeArgs: []string{"T", "K"}}, typ.Interface)
	assert.Equal(t, "IPageMapper[T, K]", typ.Interface.String())
	assert.Equal(t, decl.TypeParams, typ.TypeParams)
	assert.True(t, typ.HasModifier(models.ModifierPublic))
	assert.True(t, typ.HasModifier(models.ModifierPartial))
	assert.Equal(t, identity, typ.Generator)

	require.Len(t, typ.Methods, 2)
	assert.Equal(t, "First", typ.Methods[0].Signature.Name)
	assert.Equal(t, "Second", typ.Methods[1].Signature.Name)
	assert.True(t, typ.Methods[0].Supported)

	require.Len(t, typ.Embedded, 1)
	assert.Equal(t, "fmt.Stringer", typ.Embedded[0].Source)
}

func TestSynthesizer_TypeWithoutMethods(t *testing.T) {
	decl := &models.AnnotatedDeclaration{Name: "IEmptyMapper"}

	typ := New(mapping.NeverDecider{}, builder(), identity, nil).Type(decl, "EmptyMapper")
	assert.Empty(t, typ.Methods)
	assert.Equal(t, "IEmptyMapper", typ.Interface.String())
}

func TestSynthesizer_DeciderPanicsPropagate(t *testing.T) {
	boom := mapping.DeciderFuncs{
		CanHandleFunc: func(*models.MethodSignature) bool { panic("decider failure") },
	}
	s := New(boom, builder(), identity, nil)

	assert.PanicsWithValue(t, "decider failure", func() {
		s.Method(mapMethod("Map"))
	})
}

package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/syntax"
)

func fixed(name string, can bool, body ...models.Statement) Decider {
	return DeciderFuncs{
		CanHandleFunc: func(*models.MethodSignature) bool { return can },
		SynthesizeFunc: func(*models.MethodSignature, *syntax.Builder) []models.Statement {
			return append([]models.Statement{models.Statement("// " + name)}, body...)
		},
	}
}

func TestChain(t *testing.T) {
	m := &models.MethodSignature{Name: "Map"}
	b := newBuilder()

	t.Run("first capable decider wins", func(t *testing.T) {
		c := Chain{fixed("a", false), fixed("b", true), fixed("c", true)}
		assert.True(t, c.CanHandle(m))
		assert.Equal(t, []models.Statement{"// b"}, c.Synthesize(m, b))
	})

	t.Run("empty chain declines", func(t *testing.T) {
		var c Chain
		assert.False(t, c.CanHandle(m))
		assert.Nil(t, c.Synthesize(m, b))
	})

	t.Run("nil entries are skipped", func(t *testing.T) {
		c := Chain{nil, fixed("x", true)}
		assert.True(t, c.CanHandle(m))
	})
}

func TestDeciderFuncs_NilFuncs(t *testing.T) {
	var d DeciderFuncs
	assert.False(t, d.CanHandle(&models.MethodSignature{}))
	assert.Nil(t, d.Synthesize(&models.MethodSignature{}, newBuilder()))
}

func TestNeverDecider(t *testing.T) {
	var d NeverDecider
	assert.False(t, d.CanHandle(&models.MethodSignature{Name: "Map"}))
	assert.Nil(t, d.Synthesize(&models.MethodSignature{Name: "Map"}, newBuilder()))
}

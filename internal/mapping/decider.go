// Package mapping holds the capability that decides whether a mapping method
// can be implemented and produces its body.
package mapping

import (
	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/syntax"
)

// Decider decides whether a method signature can be implemented and, if so,
// produces its body statements. Implementations must be safe for concurrent use.
type Decider interface {
	CanHandle(method *models.MethodSignature) bool
	Synthesize(method *models.MethodSignature, b *syntax.Builder) []models.Statement
}

// DeciderFuncs adapts a pair of functions to the Decider interface
type DeciderFuncs struct {
	CanHandleFunc  func(method *models.MethodSignature) bool
	SynthesizeFunc func(method *models.MethodSignature, b *syntax.Builder) []models.Statement
}

// CanHandle calls CanHandleFunc; a nil func declines
func (f DeciderFuncs) CanHandle(method *models.MethodSignature) bool {
	if f.CanHandleFunc == nil {
		return false
	}
	return f.CanHandleFunc(method)
}

// Synthesize calls SynthesizeFunc
func (f DeciderFuncs) Synthesize(method *models.MethodSignature, b *syntax.Builder) []models.Statement {
	if f.SynthesizeFunc == nil {
		return nil
	}
	return f.SynthesizeFunc(method, b)
}

// Chain tries each decider in order and uses the first one that can handle a method
type Chain []Decider

// CanHandle reports whether any decider in the chain can handle the method
func (c Chain) CanHandle(method *models.MethodSignature) bool {
	return c.pick(method) != nil
}

// Synthesize delegates to the first decider that can handle the method
func (c Chain) Synthesize(method *models.MethodSignature, b *syntax.Builder) []models.Statement {
	if d := c.pick(method); d != nil {
		return d.Synthesize(method, b)
	}
	return nil
}

func (c Chain) pick(method *models.MethodSignature) Decider {
	for _, d := range c {
		if d != nil && d.CanHandle(method) {
			return d
		}
	}
	return nil
}

// NeverDecider declines every method, so every body becomes the unsupported marker
type NeverDecider struct{}

func (NeverDecider) CanHandle(*models.MethodSignature) bool { return false }

func (NeverDecider) Synthesize(*models.MethodSignature, *syntax.Builder) []models.Statement {
	return nil
}

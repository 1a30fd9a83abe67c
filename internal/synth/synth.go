// Package synth builds the implementing type for a mapping interface.
package synth

import (
	"go.uber.org/zap"

	"github.com/toyz/mapgen/internal/mapping"
	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/syntax"
)

// Synthesizer turns interface members into generated methods
type Synthesizer struct {
	Decider   mapping.Decider
	Builder   *syntax.Builder
	Generator models.GeneratorIdentity
	Logger    *zap.Logger
}

// New creates a synthesizer; a nil logger discards decision logs
func New(decider mapping.Decider, builder *syntax.Builder, generator models.GeneratorIdentity, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		Decider:   decider,
		Builder:   builder,
		Generator: generator,
		Logger:    logger,
	}
}

// SynthesizeBody returns the decider's statements verbatim when it can handle
// the method and a single unsupported statement otherwise
func SynthesizeBody(method *models.MethodSignature, decider mapping.Decider, builder *syntax.Builder, generator models.GeneratorIdentity) []models.Statement {
	return New(decider, builder, generator, nil).Method(method).Body
}

// Method synthesizes one method
func (s *Synthesizer) Method(method *models.MethodSignature) models.SynthesizedMethod {
	out := models.SynthesizedMethod{Signature: method.Clone()}

	if s.Decider != nil && s.Decider.CanHandle(method) {
		out.Body = s.Decider.Synthesize(method, s.Builder)
		out.Supported = true
		s.Logger.Debug("mapping synthesized",
			zap.String("method", method.Name),
			zap.Int("statements", len(out.Body)))
		return out
	}

	out.Body = []models.Statement{s.Builder.Unsupported(s.Generator.Name, method.Name)}
	s.Logger.Debug("mapping unsupported", zap.String("method", method.Name))
	return out
}

// Type synthesizes the exported implementing type named name for decl.
// Methods keep declaration order; embedded interface elements are carried
// over unchanged.
func (s *Synthesizer) Type(decl *models.AnnotatedDeclaration, name string) *models.SynthesizedType {
	args := make([]string, len(decl.TypeParams))
	for i, tp := range decl.TypeParams {
		args[i] = tp.Name
	}

	t := &models.SynthesizedType{
		Name:       name,
		Interface:  models.TypeRef{Name: decl.Name, TypeArgs: args},
		TypeParams: append([]models.TypeParam(nil), decl.TypeParams...),
		Modifiers:  []models.Modifier{models.ModifierPublic, models.ModifierPartial},
		Generator:  s.Generator,
	}

	for _, member := range decl.Members {
		switch member.Kind {
		case models.MemberMethod:
			t.Methods = append(t.Methods, s.Method(member.Method))
		default:
			t.Embedded = append(t.Embedded, member)
		}
	}
	return t
}

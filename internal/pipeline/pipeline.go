// Package pipeline orchestrates one generation pass: naming, method and type
// synthesis, and reconstruction of the enclosing scope.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/toyz/mapgen/internal/ancestry"
	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/mapping"
	"github.com/toyz/mapgen/internal/models"
	"github.com/toyz/mapgen/internal/naming"
	"github.com/toyz/mapgen/internal/references"
	"github.com/toyz/mapgen/internal/synth"
	"github.com/toyz/mapgen/internal/syntax"
	"github.com/toyz/mapgen/internal/version"
)

// SemanticContext is the host's view of the compilation the declaration
// belongs to
type SemanticContext interface {
	// Imports returns the import directives visible to the declaration
	Imports() []models.ImportDirective
}

// Config configures a Pipeline. Zero values select the defaults.
type Config struct {
	References      *references.Set          // defaults to references.Default()
	Identity        models.GeneratorIdentity // defaults to version.Identity()
	Naming          naming.Policy            // defaults to naming.Default()
	Decider         mapping.Decider          // defaults to mapping.NewFieldDecider()
	RequireBaseline bool                     // fail instead of warn on missing references
	Lenient         bool                     // skip unsupported ancestors for every declaration
	Logger          *zap.Logger
}

// Pipeline generates implementing types. It holds no per-pass state and is
// safe for concurrent use.
type Pipeline struct {
	refs            *references.Set
	identity        models.GeneratorIdentity
	naming          naming.Policy
	decider         mapping.Decider
	requireBaseline bool
	lenient         bool
	logger          *zap.Logger
}

// New creates a pipeline
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		refs:            cfg.References,
		identity:        cfg.Identity,
		naming:          cfg.Naming,
		decider:         cfg.Decider,
		requireBaseline: cfg.RequireBaseline,
		lenient:         cfg.Lenient,
		logger:          cfg.Logger,
	}
	if p.refs == nil {
		p.refs = references.Default()
	}
	if p.identity.Name == "" {
		p.identity = version.Identity()
	}
	if p.naming.Prefix == "" && p.naming.Suffix == "" {
		p.naming = naming.Default()
	}
	if p.decider == nil {
		p.decider = mapping.NewFieldDecider()
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Identity returns the generator identity stamped on synthesized types
func (p *Pipeline) Identity() models.GeneratorIdentity {
	return p.identity
}

// AdditionalImports returns the import paths every generated fragment may need
func (p *Pipeline) AdditionalImports() []string {
	return []string{p.refs.QueryPath(), "maps", "errors", "fmt"}
}

// Generate produces the fragment implementing decl. A cancelled context
// yields ctx.Err() and no fragment. Panics raised by the decider are not
// recovered.
func (p *Pipeline) Generate(ctx context.Context, decl *models.AnnotatedDeclaration, sem SemanticContext) (*models.GenerationResult, error) {
	if decl == nil {
		return nil, errors.New(errors.ValidationErrorCode, "no declaration to generate")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := p.logger.With(zap.String("interface", decl.Name))
	result := &models.GenerationResult{}

	for _, missing := range p.refs.Missing() {
		if p.requireBaseline {
			return nil, errors.MissingReference(missing, p.refs.Roots).WithLocation(decl.Location)
		}
		warning := fmt.Sprintf("baseline reference %q not found; generating without it", missing)
		result.Warnings = append(result.Warnings, warning)
		log.Warn("missing baseline reference", zap.String("reference", missing))
	}

	name, err := p.typeName(decl)
	if err != nil {
		return nil, err
	}

	var seed []models.ImportDirective
	if sem != nil {
		seed = sem.Imports()
	} else if ns, ok := decl.Namespace(); ok {
		seed = ns.Imports
	}
	ws := syntax.NewWorkspace(seed, p.refs)
	ws.Reserve(scopeNames(decl)...)

	typ := synth.New(p.decider, ws.Builder(), p.identity, log).Type(decl, name)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := ancestry.Rebuild(decl.Ancestors, typ, p.lenient || decl.Options.Lenient)
	if err != nil {
		if be, ok := err.(*errors.BaseError); ok && be.Loc.IsEmpty() {
			be.WithLocation(decl.Location)
		}
		return nil, err
	}

	result.Members = []models.Declaration{root}
	result.Imports = ws.Imports(p.AdditionalImports()...)

	log.Debug("generated mapper",
		zap.String("type", name),
		zap.Int("methods", len(typ.Methods)),
		zap.Int("ancestors", len(decl.Ancestors)))
	return result, nil
}

// scopeNames lists the identifiers in scope inside the generated methods that
// could shadow a package name: type parameters, parameter and result names,
// and the declarations of the interface's own package
func scopeNames(decl *models.AnnotatedDeclaration) []string {
	var names []string
	for _, tp := range decl.TypeParams {
		names = append(names, tp.Name)
	}
	var pkgScope bool
	for _, m := range decl.Methods() {
		for _, param := range m.Params {
			names = append(names, param.Name)
		}
		for _, result := range m.Results {
			names = append(names, result.Name)
		}
		if !pkgScope && m.Func != nil && m.Func.Pkg() != nil {
			names = append(names, m.Func.Pkg().Scope().Names()...)
			pkgScope = true
		}
	}
	return names
}

func (p *Pipeline) typeName(decl *models.AnnotatedDeclaration) (string, error) {
	if explicit := decl.Options.Name; explicit != "" {
		if err := naming.Validate(explicit); err != nil {
			return "", err
		}
		if explicit == decl.Name {
			return "", errors.MalformedIdentifier(decl.Name, "explicit name equals the interface name")
		}
		return explicit, nil
	}
	return p.naming.Derive(decl.Name)
}

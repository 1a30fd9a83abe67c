package annotations

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/toyz/mapgen/internal/errors"
)

// annotationAST is the grammar root: //mapgen::<type> [-Param[=value]]...
type annotationAST struct {
	Comment   string      `parser:"@Comment"`
	Tool      string      `parser:"@Ident"`
	Separator string      `parser:"@Separator"`
	Type      string      `parser:"@Ident"`
	Params    []*paramAST `parser:"@@*"`
}

type paramAST struct {
	Pos   lexer.Position
	Name  string    `parser:"Dash @Ident"`
	Value *valueAST `parser:"( Equals @@ )?"`
}

type valueAST struct {
	String *string `parser:"  @String"`
	Number *string `parser:"| @Number"`
	Ident  *string `parser:"| @Ident"`
}

func (v *valueAST) raw() (string, error) {
	switch {
	case v.String != nil:
		return strconv.Unquote(*v.String)
	case v.Number != nil:
		return *v.Number, nil
	case v.Ident != nil:
		return *v.Ident, nil
	default:
		return "", fmt.Errorf("empty value")
	}
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "Separator", Pattern: `::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// ParticipleParser parses mapgen annotations with a participle grammar and
// validates them against the registered schemas
type ParticipleParser struct {
	parser   *participle.Parser[annotationAST]
	registry AnnotationRegistry
}

// NewParticipleParser creates a parser validating against registry
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	return &ParticipleParser{
		parser: participle.MustBuild[annotationAST](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
		registry: registry,
	}
}

// IsAnnotation reports whether a comment line is a mapgen annotation
func IsAnnotation(comment string) bool {
	return strings.HasPrefix(strings.TrimSpace(comment), Prefix)
}

// ParseAnnotation parses one annotation comment
func (p *ParticipleParser) ParseAnnotation(comment string, location errors.SourceLocation) (*ParsedAnnotation, error) {
	comment = strings.TrimSpace(comment)

	ast, err := p.parser.ParseString(location.File, comment)
	if err != nil {
		return nil, p.syntaxError(err, location)
	}
	if ast.Tool != "mapgen" {
		return nil, errors.NewSyntaxErrorWithToken("annotation must start with "+Prefix, ast.Tool).WithLocation(location)
	}

	annotationType, err := ParseAnnotationType(ast.Type)
	if err != nil {
		return nil, errors.NewSyntaxErrorWithToken(err.Error(), ast.Type).WithLocation(location)
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        comment,
	}

	if p.registry == nil {
		for _, param := range ast.Params {
			parsed.Parameters[param.Name] = true
			if param.Value != nil {
				raw, err := param.Value.raw()
				if err != nil {
					return nil, p.valueError(param, err, location)
				}
				parsed.Parameters[param.Name] = raw
			}
		}
		return parsed, nil
	}

	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, errors.Wrap(errors.SchemaErrorCode, "no schema for annotation", err).WithLocation(location)
	}
	if err := p.bind(parsed, schema, ast.Params); err != nil {
		return nil, err
	}
	return parsed, nil
}

// bind converts and validates parameters against the schema
func (p *ParticipleParser) bind(parsed *ParsedAnnotation, schema AnnotationSchema, params []*paramAST) error {
	loc := parsed.Location

	for _, param := range params {
		spec, exists := schema.Parameters[param.Name]
		if !exists {
			return errors.NewValidationError(param.Name, "known parameter", "unknown parameter").
				WithLocation(loc).
				WithSuggestion(fmt.Sprintf("Remove -%s or use one of: %s", param.Name, knownParameters(schema)))
		}
		if parsed.HasParameter(param.Name) {
			return errors.NewValidationError(param.Name, "single occurrence", "duplicate parameter").WithLocation(loc)
		}

		var value interface{}
		switch {
		case param.Value != nil:
			raw, err := param.Value.raw()
			if err != nil {
				return p.valueError(param, err, loc)
			}
			converted, err := spec.Type.convert(raw)
			if err != nil {
				return errors.NewValidationError(param.Name, spec.Type.String(), raw).WithLocation(loc)
			}
			value = converted
		case spec.DefaultValue != nil:
			value = spec.DefaultValue
		default:
			return errors.NewValidationError(param.Name, spec.Type.String()+" value", "flag without value").
				WithLocation(loc).
				WithSuggestion(fmt.Sprintf("Use -%s=<value>", param.Name))
		}

		if spec.Validator != nil {
			if err := spec.Validator(value); err != nil {
				return errors.NewValidationError(param.Name, spec.Description, fmt.Sprint(value)).
					WithValue(value).
					WithLocation(loc).
					WithSuggestion(err.Error())
			}
		}
		parsed.Parameters[param.Name] = value
	}

	for name, spec := range schema.Parameters {
		if spec.Required && !parsed.HasParameter(name) {
			return errors.NewValidationError(name, "required parameter", "missing").
				WithLocation(loc).
				WithSuggestion(fmt.Sprintf("Add -%s=<value> to the annotation", name))
		}
	}
	return nil
}

func (p *ParticipleParser) syntaxError(err error, location errors.SourceLocation) error {
	serr := errors.NewSyntaxError("invalid annotation")
	serr.Cause = err
	if perr, ok := err.(participle.Error); ok {
		pos := perr.Position()
		location.Column = pos.Column
		serr.Message = "invalid annotation: " + perr.Message()
	}
	return serr.WithLocation(location)
}

func (p *ParticipleParser) valueError(param *paramAST, err error, location errors.SourceLocation) error {
	return errors.NewValidationError(param.Name, "valid value", err.Error()).WithLocation(location)
}

func knownParameters(schema AnnotationSchema) string {
	names := make([]string, 0, len(schema.Parameters))
	for name := range schema.Parameters {
		names = append(names, "-"+name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

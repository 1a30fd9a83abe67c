package errors

import "fmt"

// Sentinels for the generation pipeline. Concrete errors wrap them, so callers
// match with the standard library's errors.Is.
var (
	ErrUnsupportedAncestor = New(UnsupportedAncestorCode, "unsupported ancestor kind")
	ErrMalformedIdentifier = New(MalformedIdentifierCode, "malformed mapping interface identifier")
	ErrMissingReference    = New(MissingReferenceCode, "baseline reference could not be resolved")
)

// UnsupportedAncestor reports a lexical container outside {namespace, class, struct}
func UnsupportedAncestor(kind, name string) *BaseError {
	return Wrap(UnsupportedAncestorCode, fmt.Sprintf("cannot nest generated type inside %s %q", kind, name), ErrUnsupportedAncestor).
		WithContext("ancestor_kind", kind).
		WithContext("ancestor_name", name).
		WithSuggestion("Move the mapping interface into a package, class or struct scope").
		WithSuggestion("Enable lenient ancestors to drop unsupported containers")
}

// MalformedIdentifier reports an identifier the naming policy cannot transform
func MalformedIdentifier(identifier, reason string) *BaseError {
	return Wrap(MalformedIdentifierCode, fmt.Sprintf("cannot derive type name from %q: %s", identifier, reason), ErrMalformedIdentifier).
		WithContext("identifier", identifier).
		WithSuggestion("Name mapping interfaces with the configured prefix, e.g. IUserMapper").
		WithSuggestion("Set an explicit name with -Name=<Ident> on the annotation")
}

// MissingReference reports a baseline reference absent from the trusted roots
func MissingReference(reference string, roots []string) *BaseError {
	return Wrap(MissingReferenceCode, fmt.Sprintf("baseline reference %q not found", reference), ErrMissingReference).
		WithContext("reference", reference).
		WithContext("roots", roots).
		WithSuggestion("Check GOROOT points at a complete Go installation")
}

// Package naming derives the concrete type name generated for a mapping interface.
package naming

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/mapgen/internal/errors"
)

// DefaultPrefix is the leading marker expected on mapping interface names
const DefaultPrefix = "I"

// Policy turns an interface identifier into the generated type name.
// The zero value strips nothing and appends nothing, which always collides;
// use Default or set at least one of the fields.
type Policy struct {
	Prefix string // leading marker stripped from the identifier
	Suffix string // appended after stripping
}

// Default returns the policy used when no configuration overrides it
func Default() Policy {
	return Policy{Prefix: DefaultPrefix}
}

// Derive returns the generated type name for identifier.
// It fails with errors.ErrMalformedIdentifier when the identifier lacks the
// prefix, is no longer than the prefix, or would yield an invalid or
// unexported Go identifier.
func (p Policy) Derive(identifier string) (string, error) {
	if !token.IsIdentifier(identifier) {
		return "", errors.MalformedIdentifier(identifier, "not a Go identifier")
	}

	name := identifier
	if p.Prefix != "" {
		if len(identifier) <= len(p.Prefix) {
			return "", errors.MalformedIdentifier(identifier, "identifier is not longer than the prefix "+quote(p.Prefix))
		}
		if !strings.HasPrefix(identifier, p.Prefix) {
			return "", errors.MalformedIdentifier(identifier, "identifier does not start with the prefix "+quote(p.Prefix))
		}
		name = identifier[len(p.Prefix):]
	}
	name += p.Suffix

	if name == identifier {
		return "", errors.MalformedIdentifier(identifier, "derived name collides with the interface")
	}
	if !token.IsIdentifier(name) {
		return "", errors.MalformedIdentifier(identifier, "derived name "+quote(name)+" is not a Go identifier")
	}
	if first, _ := utf8.DecodeRuneInString(name); !unicode.IsUpper(first) {
		return "", errors.MalformedIdentifier(identifier, "derived name "+quote(name)+" is not exported")
	}
	return name, nil
}

// Validate checks an explicit override name supplied by an annotation
func Validate(name string) error {
	if !token.IsIdentifier(name) || !token.IsExported(name) {
		return errors.MalformedIdentifier(name, "explicit name must be an exported Go identifier")
	}
	return nil
}

func quote(s string) string {
	return "'" + s + "'"
}

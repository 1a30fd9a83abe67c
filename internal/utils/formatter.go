package utils

import (
	"fmt"
	"go/parser"
	"go/token"

	"golang.org/x/tools/imports"
)

var formatOptions = &imports.Options{
	Comments:  true,
	TabIndent: true,
	TabWidth:  8,
}

// FormatGoCode lays out generated source the way gofmt does and drops unused
// imports. Source that does not parse is reported with the syntax error.
func FormatGoCode(filename string, source []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, source, formatOptions)
	if err != nil {
		if parseErr := ValidateGoCode(source); parseErr != nil {
			return nil, fmt.Errorf("invalid Go syntax: %w", parseErr)
		}
		return nil, err
	}
	return formatted, nil
}

// ValidateGoCode checks if the provided code is valid Go syntax
func ValidateGoCode(code []byte) error {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", code, parser.ParseComments)
	return err
}

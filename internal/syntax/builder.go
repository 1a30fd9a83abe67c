package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/mapgen/internal/models"
)

// Builder constructs Go statements for generated method bodies
type Builder struct {
	ws *Workspace
}

// Qualify returns pkg.name using the workspace's name for the standard package
func (b *Builder) Qualify(importPath, name string) string {
	return b.ws.Name(importPath) + "." + name
}

// Call renders a call to a standard package function
func (b *Builder) Call(importPath, fn string, args ...string) string {
	return fmt.Sprintf("%s(%s)", b.Qualify(importPath, fn), strings.Join(args, ", "))
}

// Declare renders var name typ
func (b *Builder) Declare(name, typ string) models.Statement {
	return models.Statement(fmt.Sprintf("var %s %s", name, typ))
}

// Define renders name := value
func (b *Builder) Define(name, value string) models.Statement {
	return models.Statement(fmt.Sprintf("%s := %s", name, value))
}

// Assign renders lhs = rhs
func (b *Builder) Assign(lhs, rhs string) models.Statement {
	return models.Statement(fmt.Sprintf("%s = %s", lhs, rhs))
}

// Return renders a return statement
func (b *Builder) Return(values ...string) models.Statement {
	if len(values) == 0 {
		return "return"
	}
	return models.Statement("return " + strings.Join(values, ", "))
}

// If renders an if statement with the given body
func (b *Builder) If(cond string, body ...models.Statement) models.Statement {
	var s strings.Builder
	s.WriteString("if ")
	s.WriteString(cond)
	s.WriteString(" {\n")
	for _, stmt := range body {
		s.WriteString(string(stmt))
		s.WriteString("\n")
	}
	s.WriteString("}")
	return models.Statement(s.String())
}

// UnsupportedMessage returns the diagnostic carried by an unsupported method body
func UnsupportedMessage(generator, method string) string {
	return fmt.Sprintf("'%s' method signature is not supported by %s", method, generator)
}

// Unsupported renders a statement that unconditionally panics with an error
// wrapping errors.ErrUnsupported
func (b *Builder) Unsupported(generator, method string) models.Statement {
	return models.Statement(fmt.Sprintf(`panic(%s("%%w: %%s", %s, %s))`,
		b.Qualify("fmt", "Errorf"),
		b.Qualify("errors", "ErrUnsupported"),
		strconv.Quote(UnsupportedMessage(generator, method)),
	))
}

// Package ancestry reconstructs the lexical containers around a synthesized
// type so the generated fragment lands in the same scope as its interface.
package ancestry

import (
	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/models"
)

// Rebuild wraps inner in one shell per ancestor and returns the outermost
// shell. The chain is ordered innermost first. Namespace shells keep the
// name and import list; class and struct shells keep the name, modifiers
// and type parameters. Any other kind fails with ErrUnsupportedAncestor
// unless lenient is set, in which case it is skipped.
func Rebuild(chain []models.Ancestor, inner models.Declaration, lenient bool) (models.Declaration, error) {
	current := inner
	for _, ancestor := range chain {
		var shell *models.Container
		switch ancestor.Kind {
		case models.AncestorNamespace:
			shell = &models.Container{
				Kind:    ancestor.Kind,
				Name:    ancestor.Name,
				Imports: append([]models.ImportDirective(nil), ancestor.Imports...),
			}
		case models.AncestorClass, models.AncestorStruct:
			shell = &models.Container{
				Kind:       ancestor.Kind,
				Name:       ancestor.Name,
				Modifiers:  append([]models.Modifier(nil), ancestor.Modifiers...),
				TypeParams: append([]models.TypeParam(nil), ancestor.TypeParams...),
			}
		default:
			if lenient {
				continue
			}
			return nil, errors.UnsupportedAncestor(ancestor.Kind.String(), ancestor.Name)
		}
		shell.Members = []models.Declaration{current}
		current = shell
	}
	return current, nil
}

// Chain flattens a rebuilt fragment back into its ancestor chain, innermost
// first, together with the innermost declaration.
func Chain(root models.Declaration) ([]models.Ancestor, models.Declaration) {
	var outerFirst []models.Ancestor
	current := root
	for {
		c, ok := current.(*models.Container)
		if !ok || len(c.Members) != 1 {
			break
		}
		outerFirst = append(outerFirst, models.Ancestor{
			Kind:       c.Kind,
			Name:       c.Name,
			Imports:    c.Imports,
			Modifiers:  c.Modifiers,
			TypeParams: c.TypeParams,
		})
		current = c.Members[0]
	}

	chain := make([]models.Ancestor, len(outerFirst))
	for i, a := range outerFirst {
		chain[len(outerFirst)-1-i] = a
	}
	return chain, current
}

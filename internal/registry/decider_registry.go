package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/mapgen/internal/errors"
	"github.com/toyz/mapgen/internal/mapping"
	"github.com/toyz/mapgen/internal/utils"
)

// Built-in decider names
const (
	DeciderFields = "fields"
	DeciderNone   = "none"
)

// deciderRegistry implements DeciderRegistry on the generic base registry
type deciderRegistry struct {
	*utils.BaseRegistry[string, mapping.Decider]
}

// NewDeciderRegistry creates a registry holding the built-in deciders
func NewDeciderRegistry() DeciderRegistry {
	base := utils.NewBaseRegistry[string, mapping.Decider]("decider", "decider name", "decider")
	base.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[mapping.Decider]("decider name"),
		utils.NoDuplicateValidator[string, mapping.Decider]("decider name"),
		func(name string, d mapping.Decider, _ map[string]mapping.Decider) error {
			if d == nil {
				return fmt.Errorf("decider '%s' cannot be nil", name)
			}
			return nil
		},
	))

	r := &deciderRegistry{BaseRegistry: base}
	_ = r.Register(DeciderFields, mapping.NewFieldDecider())
	_ = r.Register(DeciderNone, mapping.NeverDecider{})
	return r
}

// Resolve chains the named deciders in order. No names selects the field decider.
func (r *deciderRegistry) Resolve(names ...string) (mapping.Decider, error) {
	if len(names) == 0 {
		names = []string{DeciderFields}
	}

	chain := make(mapping.Chain, 0, len(names))
	for _, name := range names {
		d, ok := r.Get(strings.TrimSpace(name))
		if !ok {
			return nil, errors.ConfigurationError("deciders", fmt.Sprintf("unknown decider '%s'", name)).
				WithSuggestion("Available deciders: " + strings.Join(r.List(), ", "))
		}
		chain = append(chain, d)
	}

	if len(chain) == 1 {
		return chain[0], nil
	}
	return chain, nil
}

// List returns the registered decider names, sorted
func (r *deciderRegistry) List() []string {
	names := r.BaseRegistry.List()
	sort.Strings(names)
	return names
}

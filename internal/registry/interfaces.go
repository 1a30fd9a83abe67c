package registry

import "github.com/toyz/mapgen/internal/mapping"

// DeciderRegistry tracks the mapping deciders selectable by name
type DeciderRegistry interface {
	Register(name string, decider mapping.Decider) error
	Get(name string) (mapping.Decider, bool)
	Resolve(names ...string) (mapping.Decider, error)
	List() []string
}

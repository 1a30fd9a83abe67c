package utils

import (
	"fmt"
	"sync"
)

// RegistryValidator checks a key/value pair against the current contents before it is stored
type RegistryValidator[K comparable, V any] func(key K, value V, existing map[K]V) error

// BaseRegistry is a concurrency-safe keyed store that specific registries embed
type BaseRegistry[K comparable, V any] struct {
	mu        sync.RWMutex
	items     map[K]V
	validator RegistryValidator[K, V]
	name      string
	keyDesc   string // e.g. "decider name"
	valueDesc string // e.g. "decider"
}

// NewBaseRegistry creates an empty registry. The descriptors are used in error messages.
func NewBaseRegistry[K comparable, V any](name, keyDesc, valueDesc string) *BaseRegistry[K, V] {
	return &BaseRegistry[K, V]{
		items:     make(map[K]V),
		name:      name,
		keyDesc:   keyDesc,
		valueDesc: valueDesc,
	}
}

// SetValidator installs the validator run on every Register
func (r *BaseRegistry[K, V]) SetValidator(validator RegistryValidator[K, V]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validator = validator
}

// Register stores value under key after validation
func (r *BaseRegistry[K, V]) Register(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.validator != nil {
		if err := r.validator(key, value, r.items); err != nil {
			return fmt.Errorf("%s registry: %w", r.name, err)
		}
	}

	r.items[key] = value
	return nil
}

// Get returns the value stored under key
func (r *BaseRegistry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.items[key]
	return value, ok
}

// GetOrError is Get with a descriptive error for unknown keys
func (r *BaseRegistry[K, V]) GetOrError(key K) (V, error) {
	value, ok := r.Get(key)
	if !ok {
		return value, fmt.Errorf("%s '%v' is not registered", r.keyDesc, key)
	}
	return value, nil
}

// Has reports whether key is registered
func (r *BaseRegistry[K, V]) Has(key K) bool {
	_, ok := r.Get(key)
	return ok
}

// List returns the registered keys in no particular order
func (r *BaseRegistry[K, V]) List() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.items))
	for key := range r.items {
		keys = append(keys, key)
	}
	return keys
}

// Size returns the number of registered entries
func (r *BaseRegistry[K, V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Delete removes key and reports whether it was present
func (r *BaseRegistry[K, V]) Delete(key K) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[key]; !ok {
		return false
	}
	delete(r.items, key)
	return true
}

// NotEmptyKeyValidator rejects empty string keys
func NotEmptyKeyValidator[V any](keyDesc string) RegistryValidator[string, V] {
	return func(key string, _ V, _ map[string]V) error {
		if key == "" {
			return fmt.Errorf("%s cannot be empty", keyDesc)
		}
		return nil
	}
}

// NoDuplicateValidator rejects keys that are already registered
func NoDuplicateValidator[K comparable, V any](keyDesc string) RegistryValidator[K, V] {
	return func(key K, _ V, existing map[K]V) error {
		if _, ok := existing[key]; ok {
			return fmt.Errorf("%s '%v' is already registered", keyDesc, key)
		}
		return nil
	}
}

// ChainValidators runs validators in order and stops at the first failure
func ChainValidators[K comparable, V any](validators ...RegistryValidator[K, V]) RegistryValidator[K, V] {
	return func(key K, value V, existing map[K]V) error {
		for _, validator := range validators {
			if validator == nil {
				continue
			}
			if err := validator(key, value, existing); err != nil {
				return err
			}
		}
		return nil
	}
}

package domain

import (
	"maps"
	"slices"
)

// OverrideMap maps an entity key to a user supplied replacement value.
type OverrideMap map[string]string

// SortedKeys returns the keys in ascending lexicographic order.
func (m OverrideMap) SortedKeys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Lookup returns the override for key when it is present and non-empty.
func (m OverrideMap) Lookup(key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

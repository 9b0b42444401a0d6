// Package id generates prefixed identifiers for bridge-side objects (SSE clients, plugin instances).
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed NanoID, e.g. "sse-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics when the system has no entropy.
// Only used while wiring components at startup.
func MustGenerate(prefix string) string {
	v, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return v
}

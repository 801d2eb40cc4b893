// Package id generates opaque identifiers for tokens and scratch resources.
// Users, projects and notes use integer keys assigned by the database.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "token-V1StGXR8_Z5jdHi6B-myT").
// Used as the jti of issued tokens.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Scratch returns a name for a per-request temporary directory, e.g. "import-<uuid>".
func Scratch(kind string) string {
	return kind + "-" + uuid.NewString()
}

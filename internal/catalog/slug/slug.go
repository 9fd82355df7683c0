// Package slug derives unique, human-readable identifiers from display names.
package slug

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultAttempts bounds how many suffixed candidates are checked after the
// base slug collides.
const DefaultAttempts = 3

// Lookup reports whether a slug is taken by a row other than excludeID.
// An empty excludeID excludes nothing.
type Lookup interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// Allocator hands out slugs that are unique within one table.
type Allocator struct {
	lookup   Lookup
	attempts int
	random   func() string
}

// NewAllocator builds an Allocator backed by lookup.
func NewAllocator(lookup Lookup) *Allocator {
	return &Allocator{lookup: lookup, attempts: DefaultAttempts, random: randomHex}
}

var lower = cases.Lower(language.Und)

// Base normalizes name: trimmed, lowercased, spaces and slashes turned into
// hyphens. It may return an empty string.
func Base(name string) string {
	s := lower.String(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "-", "/", "-").Replace(s)
}

// Allocate returns the base slug of name when it is free, otherwise the base
// plus a short random hex suffix. Suffixed candidates are re-checked up to the
// attempt limit; past that the last candidate is returned and the table's
// unique constraint has the final word.
func (a *Allocator) Allocate(ctx context.Context, name, excludeID string) (string, error) {
	base := Base(name)
	if base == "" {
		base = a.random()[:8]
	}
	taken, err := a.lookup.SlugExists(ctx, base, excludeID)
	if err != nil {
		return "", fmt.Errorf("slug: check %q: %w", base, err)
	}
	if !taken {
		return base, nil
	}

	var candidate string
	for i := 0; i < a.attempts; i++ {
		candidate = base + "-" + a.random()[:6]
		taken, err = a.lookup.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("slug: check %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return candidate, nil
}

func randomHex() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

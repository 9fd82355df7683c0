package slug

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

type memLookup struct {
	taken map[string]string
	calls int
	err   error
}

func (m *memLookup) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	owner, ok := m.taken[slug]
	return ok && owner != excludeID, nil
}

func TestBase(t *testing.T) {
	cases := map[string]string{
		"Protein Bar":        "protein-bar",
		"  Whey / Isolate ":  "whey---isolate",
		"ÁCIDO Fólico":       "ácido-fólico",
		"":                   "",
		"   ":                "",
		"already-normalized": "already-normalized",
	}
	for in, want := range cases {
		require.Equal(t, want, Base(in), "input %q", in)
	}
}

func TestAllocateFreeBase(t *testing.T) {
	a := NewAllocator(&memLookup{})
	got, err := a.Allocate(context.Background(), "Protein Bar", "")
	require.NoError(t, err)
	require.Equal(t, "protein-bar", got)
}

func TestAllocateCollisionAppendsSuffix(t *testing.T) {
	lookup := &memLookup{taken: map[string]string{"protein-bar": "p-1"}}
	a := NewAllocator(lookup)
	got, err := a.Allocate(context.Background(), "Protein Bar", "")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^protein-bar-[0-9a-f]{6}$`), got)
}

func TestAllocateKeepsOwnSlugOnUpdate(t *testing.T) {
	lookup := &memLookup{taken: map[string]string{"protein-bar": "p-1"}}
	a := NewAllocator(lookup)
	got, err := a.Allocate(context.Background(), "Protein Bar", "p-1")
	require.NoError(t, err)
	require.Equal(t, "protein-bar", got)
}

func TestAllocateEmptyNameUsesRandomBase(t *testing.T) {
	a := NewAllocator(&memLookup{})
	got, err := a.Allocate(context.Background(), "   ", "")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), got)
}

func TestAllocateRetriesSuffixedCandidates(t *testing.T) {
	lookup := &memLookup{taken: map[string]string{
		"bar":        "p-1",
		"bar-aaaaaa": "p-2",
		"bar-bbbbbb": "p-3",
	}}
	suffixes := []string{"aaaaaaaa", "bbbbbbbb", "cccccccc"}
	a := NewAllocator(lookup)
	a.random = func() string {
		s := suffixes[0]
		suffixes = suffixes[1:]
		return s
	}

	got, err := a.Allocate(context.Background(), "Bar", "")
	require.NoError(t, err)
	require.Equal(t, "bar-cccccc", got)
	require.Equal(t, 4, lookup.calls)
}

func TestAllocateGivesUpAfterAttempts(t *testing.T) {
	lookup := &memLookup{taken: map[string]string{"bar": "p-1", "bar-aaaaaa": "p-2"}}
	a := NewAllocator(lookup)
	a.random = func() string { return "aaaaaaaa" }

	got, err := a.Allocate(context.Background(), "Bar", "")
	require.NoError(t, err)
	require.Equal(t, "bar-aaaaaa", got)
	require.Equal(t, 1+DefaultAttempts, lookup.calls)
}

func TestAllocateLookupError(t *testing.T) {
	a := NewAllocator(&memLookup{err: errors.New("db down")})
	_, err := a.Allocate(context.Background(), "Bar", "")
	require.Error(t, err)
}

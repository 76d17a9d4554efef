package slug

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	taken map[string]bool
}

func (f *fakeChecker) SlugTaken(_ context.Context, _ Table, slug string, _ string) (bool, error) {
	return f.taken[slug], nil
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Power Tools", "power-tools"},
		{"trims and lowers", "  Hand Tools  ", "hand-tools"},
		{"collapses whitespace", "a   b\t c", "a-b-c"},
		{"strips punctuation", "Drills & Bits!", "drills-bits"},
		{"keeps digits and hyphens", "Mark-2 Kit", "mark-2-kit"},
		{"arabic letters survive", "أدوات كهربائية", "أدوات-كهربائية"},
		{"empty after stripping", "!!!", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestResolveRejectsConflict(t *testing.T) {
	resolver := NewResolver(&fakeChecker{taken: map[string]bool{"power-tools": true}})

	_, err := resolver.Resolve(context.Background(), Categories, "Power Tools", "")
	require.ErrorIs(t, err, ErrConflict)

	s, err := resolver.Resolve(context.Background(), Categories, "Hand Tools", "")
	require.NoError(t, err)
	assert.Equal(t, "hand-tools", s)
}

func TestResolveEmptyName(t *testing.T) {
	resolver := NewResolver(&fakeChecker{taken: map[string]bool{}})

	_, err := resolver.Resolve(context.Background(), Products, "???", "")
	require.Error(t, err)
}

func TestResolveUniqueAppendsSuffix(t *testing.T) {
	resolver := NewResolver(&fakeChecker{taken: map[string]bool{
		"power-tools":   true,
		"power-tools-1": true,
	}})

	s, err := resolver.ResolveUnique(context.Background(), Products, "Power Tools", "")
	require.NoError(t, err)
	assert.Equal(t, "power-tools-2", s)
}

func TestResolveUniqueFreeBase(t *testing.T) {
	resolver := NewResolver(&fakeChecker{taken: map[string]bool{}})

	s, err := resolver.ResolveUnique(context.Background(), Products, "Power Tools", "")
	require.NoError(t, err)
	assert.Equal(t, "power-tools", s)
}

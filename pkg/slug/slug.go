package slug

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Table names a slugged catalog table.
type Table string

const (
	Categories Table = "categories"
	Products   Table = "products"
)

// ErrConflict is returned by Resolve when another live row already owns the slug.
var ErrConflict = errors.New("slug: already in use")

// Checker answers whether a slug is taken in a table. excludeID skips the row
// being edited so renaming a row to its own slug is not a conflict.
type Checker interface {
	SlugTaken(ctx context.Context, table Table, slug string, excludeID string) (bool, error)
}

type Resolver struct {
	checker Checker
}

func NewResolver(checker Checker) *Resolver {
	return &Resolver{checker: checker}
}

// Normalize derives a URL-safe slug from a display name: lowercase, trimmed,
// everything outside Arabic letters, ASCII letters, digits, whitespace,
// hyphen and underscore stripped, whitespace runs collapsed to one hyphen.
func Normalize(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 0x0600 && r <= 0x06FF:
			b.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), "-")
}

// Resolve returns the normalized slug for name, or ErrConflict when another
// row in table already uses it. Interactive admin forms use this policy so
// the admin can pick a different name.
func (r *Resolver) Resolve(ctx context.Context, table Table, name string, excludeID string) (string, error) {
	s := Normalize(name)
	if s == "" {
		return "", fmt.Errorf("slug: name %q normalizes to empty", name)
	}

	taken, err := r.checker.SlugTaken(ctx, table, s, excludeID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrConflict
	}

	return s, nil
}

// ResolveUnique returns the normalized slug, appending -1, -2, ... until a
// free one is found. Reserved for non-interactive paths such as bulk import.
func (r *Resolver) ResolveUnique(ctx context.Context, table Table, name string, excludeID string) (string, error) {
	base := Normalize(name)
	if base == "" {
		return "", fmt.Errorf("slug: name %q normalizes to empty", name)
	}

	s := base
	for i := 1; ; i++ {
		taken, err := r.checker.SlugTaken(ctx, table, s, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return s, nil
		}
		s = fmt.Sprintf("%s-%d", base, i)
	}
}

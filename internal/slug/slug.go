// Package slug derives URL-safe product identifiers from display names.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	gslug "github.com/gosimple/slug"
	"github.com/gosimple/unidecode"

	"storefront/internal/domain"
)

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate lowercases name, collapses every run of non-alphanumeric
// characters into one hyphen and trims hyphens from both ends. Non-ASCII
// letters are transliterated first so "Café" becomes "cafe".
func Generate(name string) string {
	s := strings.ToLower(unidecode.Unidecode(name))
	s = reNonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Valid reports whether s is in the form Generate produces. gosimple's
// IsSlug also admits underscores and doubled hyphens, which Generate never
// emits.
func Valid(s string) bool {
	return gslug.IsSlug(s) && !strings.Contains(s, "_") && !strings.Contains(s, "--")
}

// Prober reports whether a slug is already taken in the store.
type Prober interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, slug string) (bool, error)

func (f ProberFunc) SlugExists(ctx context.Context, slug string) (bool, error) { return f(ctx, slug) }

// MaxSuffix bounds the probe loop in Unique.
const MaxSuffix = 1000

// Unique returns the first free slug among base, base-1, base-2, ... where
// base is Generate(name), along with its numeric suffix. The probe is
// advisory: the store's unique constraint still decides.
func Unique(ctx context.Context, name string, p Prober) (string, int, error) {
	base := Generate(name)
	if base == "" {
		return "", 0, domain.ErrEmptySlug
	}
	return NextFree(ctx, base, 0, p)
}

// NextFree probes base-from, base-(from+1), ... where suffix 0 means base
// itself. It returns the first free candidate and its suffix.
func NextFree(ctx context.Context, base string, from int, p Prober) (string, int, error) {
	for n := from; n <= MaxSuffix; n++ {
		candidate := withSuffix(base, n)
		taken, err := p.SlugExists(ctx, candidate)
		if err != nil {
			return "", 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		if !taken {
			return candidate, n, nil
		}
	}
	return "", 0, fmt.Errorf("%w: no free slug for %q", domain.ErrConflict, base)
}

func withSuffix(base string, n int) string {
	if n == 0 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}

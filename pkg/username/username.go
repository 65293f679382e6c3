// Package username derives unique account usernames from display names.
//
// A display name is slugified into a URL-safe handle; when the handle is
// taken, a random 3-digit suffix is appended and the check is retried a
// bounded number of times. The retry loop is check-then-insert and therefore
// not atomic against a concurrent identical registration — the unique index
// on users.username remains the final arbiter.
package username

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// MaxAttempts caps the collision retry loop.
const MaxAttempts = 10

// ErrExhausted is returned when no free username is found within MaxAttempts.
var ErrExhausted = errors.New("username: no free username after max attempts")

// TakenFunc reports whether a candidate username is already in use.
type TakenFunc func(ctx context.Context, candidate string) (bool, error)

// Slugify converts a display name to a lowercase handle containing only
// ASCII letters, digits and single hyphens.
func Slugify(displayName string) string {
	var b strings.Builder
	b.Grow(len(displayName))

	lastWasSep := true
	for _, r := range displayName {
		r = unicode.ToLower(r)

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			continue
		}

		if normalized, ok := foldDiacritic(r); ok {
			b.WriteRune(unicode.ToLower(normalized))
			lastWasSep = false
			continue
		}

		if !lastWasSep {
			b.WriteByte('-')
			lastWasSep = true
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "user"
	}
	return slug
}

// Generate returns a username derived from displayName that taken reports as
// free. The first attempt uses the bare slug; each subsequent attempt appends
// a fresh random 3-digit suffix. Returns ErrExhausted after MaxAttempts.
func Generate(ctx context.Context, displayName string, taken TakenFunc) (string, error) {
	base := Slugify(displayName)

	candidate := base
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		inUse, err := taken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username %q: %w", candidate, err)
		}
		if !inUse {
			return candidate, nil
		}

		suffix, err := randomSuffix()
		if err != nil {
			return "", err
		}
		candidate = base + suffix
	}

	return "", ErrExhausted
}

// randomSuffix produces a 3-digit string in [100, 999] so the suffix never
// starts with a zero.
func randomSuffix() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900))
	if err != nil {
		return "", fmt.Errorf("username: random suffix: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100), nil
}

// foldDiacritic maps common Latin diacritics to ASCII equivalents. Covers the
// major European alphabets; anything else becomes a separator.
func foldDiacritic(r rune) (rune, bool) {
	normalized, ok := diacriticMap[r]
	return normalized, ok
}

var diacriticMap = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a', 'ą': 'a',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ę': 'e', 'ě': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i', 'į': 'i',
	'ł': 'l',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o',
	'ř': 'r',
	'ś': 's', 'š': 's', 'ș': 's', 'ß': 's',
	'ť': 't', 'ț': 't',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u', 'ů': 'u', 'ų': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ź': 'z', 'ž': 'z', 'ż': 'z',
	'æ': 'a', 'œ': 'o',
}

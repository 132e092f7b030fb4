package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
	"regexp"
	"strings"
)

// ErrInvalidName is returned when a display name normalizes to an empty slug.
var ErrInvalidName = errors.New("name produces an empty slug")

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugCollapseRe = regexp.MustCompile(`[\s-]+`)
)

// Slugify derives a URL-safe slug from a display name: lowercase, strip
// characters outside [a-z0-9\s-], collapse whitespace and hyphen runs to a
// single hyphen, trim leading/trailing hyphens. The result matches
// ^[a-z0-9]+(-[a-z0-9]+)*$ or is empty.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RandomSuffix returns n random characters from a lowercase alphanumeric
// alphabet. Used for job slugs, where collision probability is treated as
// acceptably low and is not re-verified against the store.
func RandomSuffix(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(suffixAlphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing is not recoverable here; degrade to a
			// fixed character rather than panic in a request path.
			b[i] = 'x'
			continue
		}
		b[i] = suffixAlphabet[idx.Int64()]
	}
	return string(b)
}

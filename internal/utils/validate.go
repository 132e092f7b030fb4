package utils

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address. Deliberately the
// same loose shape check the public forms apply; deliverability is not
// verified here.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ErrInvalidURL is returned by NormalizeURL for values that do not parse as
// an absolute http(s) URL even after the https:// prefix is applied.
var ErrInvalidURL = errors.New("invalid URL")

// NormalizeURL trims the value and prefixes https:// when no scheme is
// present, then validates the result parses as an absolute URL with a host.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidURL
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	return s, nil
}

// NormalizeTags lowercases and trims tags, dropping empties and duplicates
// while preserving first-seen order. The same normalization is applied to
// query tokens so tag matching is a plain intersection test.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// TokenizeQuery splits a free-text query into normalized tokens suitable for
// tag intersection.
func TokenizeQuery(q string) []string {
	return NormalizeTags(strings.Fields(q))
}

package roster

import (
	"regexp"
	"strings"
)

// PlaceholderEmail marks an address that must never be treated as
// deliverable.
const PlaceholderEmail = "unknown@invalid.local"

const emailDomain = "e.ntu.edu.sg"

var (
	matricRe = regexp.MustCompile(`^U\d{7}[A-Z]$`)
	emailRe  = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
)

// Units is the closed set of production-team membership tags.
var Units = []string{"ART", "AUDIO", "CAMERA", "EDITORIAL", "TECH"}

var unitSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Units))
	for _, u := range Units {
		m[u] = struct{}{}
	}
	return m
}()

// IsCanonicalID reports whether id matches the institutional
// matriculation pattern (already uppercased).
func IsCanonicalID(id string) bool { return matricRe.MatchString(id) }

// IsValidEmail reports whether addr is a well-formed lowercase address.
func IsValidEmail(addr string) bool { return emailRe.MatchString(addr) }

// NormalizeID uppercases and trims a raw identifier.
func NormalizeID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeEmail lowercases and trims a raw address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// DeriveEmail builds the institutional address for a canonical id, or
// the placeholder when the id does not follow the pattern.
func DeriveEmail(id string) string {
	if !IsCanonicalID(id) {
		return PlaceholderEmail
	}
	return strings.ToLower(id) + "@" + emailDomain
}

// IDFromEmail recovers the canonical id from an institutional address,
// returning false for any other address.
func IDFromEmail(addr string) (string, bool) {
	local, domain, ok := strings.Cut(NormalizeEmail(addr), "@")
	if !ok || domain != emailDomain {
		return "", false
	}
	id := strings.ToUpper(local)
	if !IsCanonicalID(id) {
		return "", false
	}
	return id, true
}

// NormalizeUnit strips a leading "UNIT " prefix, uppercases, and checks
// membership in the closed unit set. Unknown tags are discarded.
func NormalizeUnit(raw string) (string, bool) {
	u := strings.ToUpper(strings.TrimSpace(raw))
	u = strings.TrimSpace(strings.TrimPrefix(u, "UNIT "))
	if u == "" {
		return "", false
	}
	_, ok := unitSet[u]
	return u, ok
}

// IsActiveStatus reports whether a roster status admits the student to
// the evaluation pipeline.
func IsActiveStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "enrolled":
		return true
	}
	return false
}

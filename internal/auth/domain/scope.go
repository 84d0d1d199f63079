package domain

import (
	"slices"
	"strings"
)

// Baseline OpenID Connect scopes every user may request.
const (
	ScopeOpenID  = "openid"
	ScopeProfile = "profile"
	ScopeEmail   = "email"
)

// BaselineScopes returns the scopes granted to every user regardless of
// their permitted-scope set.
func BaselineScopes() []string {
	return []string{ScopeOpenID, ScopeProfile, ScopeEmail}
}

// ParseScopes splits a space-delimited scope string into a sorted set.
// Duplicates collapse; empty input yields nil.
func ParseScopes(s string) []string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	slices.Sort(fields)
	return slices.Compact(fields)
}

// JoinScopes is the inverse of ParseScopes.
func JoinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}

// ValidScopeToken reports whether s is a legal scope-token per RFC 6749
// section 3.3: printable ASCII excluding space, double quote and backslash.
func ValidScopeToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x21 || c > 0x7e || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}

// ScopeSubset reports whether every requested scope is in allowed, and
// returns the ones that are not.
func ScopeSubset(requested, allowed []string) (bool, []string) {
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}

	var missing []string
	for _, s := range requested {
		if _, ok := set[s]; !ok {
			missing = append(missing, s)
		}
	}
	return len(missing) == 0, missing
}

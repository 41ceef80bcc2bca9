// Package phone canonicalizes Indonesian phone numbers and derives the comparison variants used to
// match differently formatted directory entries.
package phone

import "strings"

// CountryCode is the calling code prepended when a number is written in national form (leading 0).
const CountryCode = "62"

const (
	shortSuffixLen = 8
	longSuffixLen  = 9
)

// Normalize returns the canonical form of raw: digits only, no leading '+', and a single leading '0'
// replaced by CountryCode. Empty input yields "". Normalize is idempotent.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(raw) + len(CountryCode))
	// A leading '+' is the only non-digit the input may legitimately carry, and the canonical form
	// drops it as well, so keeping digits alone covers both steps.
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	p := b.String()
	if strings.HasPrefix(p, "0") {
		p = CountryCode + p[1:]
	}
	return p
}

// VariantSet is an insertion-ordered set of comparison strings derived from one canonical number.
type VariantSet struct {
	values []string
	index  map[string]struct{}
}

func (s *VariantSet) add(v string) {
	if v == "" {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{}, 5)
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.values = append(s.values, v)
}

// Has reports whether v is a member. The empty string is never a member.
func (s VariantSet) Has(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Values returns the members in the order they were derived.
func (s VariantSet) Values() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}

// Len returns the number of members.
func (s VariantSet) Len() int { return len(s.values) }

// Variants derives the comparison set for a canonical number: the number itself, the number without
// a leading CountryCode, the number without a leading '0', and its last 8 and last 9 digits when it is
// long enough. Empty strings are skipped, so Variants("") is empty.
func Variants(canonical string) VariantSet {
	var s VariantSet
	s.add(canonical)
	s.add(strings.TrimPrefix(canonical, CountryCode))
	s.add(strings.TrimPrefix(canonical, "0"))
	if len(canonical) >= shortSuffixLen {
		s.add(canonical[len(canonical)-shortSuffixLen:])
	}
	if len(canonical) >= longSuffixLen {
		s.add(canonical[len(canonical)-longSuffixLen:])
	}
	return s
}

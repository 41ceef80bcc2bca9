package recovery

import (
	"strings"

	"ai-planner/backend/internal/phone"
)

// Match is the outcome of matching one query against a directory snapshot.
type Match struct {
	// Record is the accepted record; nil when nothing matched.
	Record *Record
	// Candidates lists the ids of every matching record in iteration order. Record is always the
	// first of them; more than one entry means the directory is ambiguous for this query.
	Candidates []string
}

// Found reports whether a record was accepted.
func (m Match) Found() bool { return m.Record != nil }

// Ambiguous reports whether more than one record matched.
func (m Match) Ambiguous() bool { return len(m.Candidates) > 1 }

// MatchDirectory finds the record whose phone number corresponds to queryCanonical.
//
// A record is a candidate when, for some variant v of the query, its canonical phone equals v, ends
// with v, is a suffix of v, or has v among its own variants. The first candidate in iteration order
// wins; there is no best-match ranking. Records without a phone never match.
func MatchDirectory(queryCanonical string, dir Directory) Match {
	var m Match
	queryVariants := phone.Variants(queryCanonical).Values()
	if len(queryVariants) == 0 {
		return m
	}
	for i := range dir {
		if !isCandidate(queryVariants, dir[i]) {
			continue
		}
		if m.Record == nil {
			m.Record = &dir[i]
		}
		m.Candidates = append(m.Candidates, dir[i].ID)
	}
	return m
}

func isCandidate(queryVariants []string, rec Record) bool {
	stored := phone.Normalize(rec.Phone())
	// An empty stored number is a suffix of everything.
	if stored == "" {
		return false
	}
	storedVariants := phone.Variants(stored)
	for _, v := range queryVariants {
		if stored == v ||
			strings.HasSuffix(stored, v) ||
			strings.HasSuffix(v, stored) ||
			storedVariants.Has(v) {
			return true
		}
	}
	return false
}

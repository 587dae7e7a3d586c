package candidate

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Kind tells how a candidate domain was derived from the search term.
type Kind string

const (
	// KindExact is a plain term.tld combination.
	KindExact Kind = "exact"
	// KindHack is a domain hack, where the TLD forms part of the word
	// (e.g. "kosti.ck" reading as "kostick").
	KindHack Kind = "hack"
)

// Candidate is a domain to check plus its generation provenance. Visual is
// the way a hack reads when the dot is removed; empty for exact candidates.
type Candidate struct {
	Domain  string
	Kind    Kind
	Visual  string
	Origins []Kind
}

// Set is an ordered, deduplicated collection of candidates keyed by domain.
// When two generation paths produce the same domain the first-seen candidate
// keeps its Kind and Visual, and the later origin is accumulated.
type Set struct {
	order    []string
	byDomain map[string]*Candidate
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{byDomain: make(map[string]*Candidate)}
}

// Add inserts a candidate, merging with any earlier candidate for the same domain.
func (s *Set) Add(c Candidate) {
	c.Domain = strings.ToLower(strings.TrimSpace(c.Domain))
	if c.Domain == "" {
		return
	}
	if existing, ok := s.byDomain[c.Domain]; ok {
		for _, origin := range existing.Origins {
			if origin == c.Kind {
				return
			}
		}
		existing.Origins = append(existing.Origins, c.Kind)
		return
	}
	c.Origins = []Kind{c.Kind}
	s.byDomain[c.Domain] = &c
	s.order = append(s.order, c.Domain)
}

// Domains returns the unique domain strings in insertion order.
func (s *Set) Domains() []string {
	domains := make([]string, len(s.order))
	copy(domains, s.order)
	return domains
}

// Get returns the candidate for a domain.
func (s *Set) Get(domain string) (Candidate, bool) {
	c, ok := s.byDomain[strings.ToLower(domain)]
	if !ok {
		return Candidate{}, false
	}
	return *c, true
}

// Meta returns a domain-keyed view of the set for rendering and export.
func (s *Set) Meta() map[string]Candidate {
	meta := make(map[string]Candidate, len(s.byDomain))
	for domain, c := range s.byDomain {
		meta[domain] = *c
	}
	return meta
}

// Len returns the number of unique candidates.
func (s *Set) Len() int {
	return len(s.order)
}

// HasHacks reports whether any candidate in the set is a domain hack.
func (s *Set) HasHacks() bool {
	for _, c := range s.byDomain {
		if c.Kind == KindHack {
			return true
		}
	}
	return false
}

// Exact generates term.tld for every TLD in the list.
func Exact(term string, tlds []string) []Candidate {
	term = strings.ToLower(strings.TrimSpace(term))
	candidates := make([]Candidate, 0, len(tlds))
	for _, tld := range tlds {
		candidates = append(candidates, Candidate{
			Domain: term + "." + tld,
			Kind:   KindExact,
		})
	}
	return candidates
}

// Generate builds the full deduplicated candidate set for a term: exact
// matches for every TLD plus all domain hacks. Exact candidates are added
// first, so a hack colliding with an exact domain keeps the exact metadata.
func Generate(term string, tlds []string) *Set {
	set := NewSet()
	for _, c := range Exact(term, tlds) {
		set.Add(c)
	}
	for _, c := range Hacks(term, tlds) {
		set.Add(c)
	}
	return set
}

// FilterTLDs splits a requested allow-list into TLDs present in the known
// list and ones that are not. Input is normalized to lowercase.
func FilterTLDs(known, requested []string) (valid, invalid []string) {
	knownSet := mapset.NewSet(known...)
	for _, tld := range requested {
		tld = strings.ToLower(strings.TrimSpace(tld))
		if tld == "" {
			continue
		}
		if knownSet.Contains(tld) {
			valid = append(valid, tld)
		} else {
			invalid = append(invalid, tld)
		}
	}
	return valid, invalid
}

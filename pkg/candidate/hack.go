package candidate

import (
	"sort"
	"strings"
)

// SuffixHacks finds TLDs that match the end of the word. If the word is
// "kostick" and "ck" is a TLD, the hack is "kosti.ck".
func SuffixHacks(word string, tlds []string) []Candidate {
	word = strings.ToLower(word)
	var hacks []Candidate
	for _, tld := range tlds {
		if !strings.HasSuffix(word, tld) || len(tld) >= len(word) {
			continue
		}
		prefix := word[:len(word)-len(tld)]
		if prefix == "" {
			continue
		}
		hacks = append(hacks, Candidate{
			Domain: prefix + "." + tld,
			Kind:   KindHack,
			Visual: prefix + tld,
		})
	}
	return hacks
}

// InteriorHacks finds TLDs that appear inside the word, splitting it at the
// match. "sasha" with TLD "sh" yields "sa.sh", reading as "sash". Suffix
// positions are excluded; SuffixHacks covers those.
func InteriorHacks(word string, tlds []string) []Candidate {
	word = strings.ToLower(word)
	var hacks []Candidate
	seen := make(map[string]bool)
	for _, tld := range tlds {
		start := 0
		for {
			pos := strings.Index(word[start:], tld)
			if pos < 0 {
				break
			}
			pos += start
			start = pos + 1
			if pos+len(tld) == len(word) {
				continue
			}
			if pos == 0 {
				continue
			}
			prefix := word[:pos]
			domain := prefix + "." + tld
			if seen[domain] {
				continue
			}
			seen[domain] = true
			hacks = append(hacks, Candidate{
				Domain: domain,
				Kind:   KindHack,
				Visual: prefix + tld,
			})
		}
	}
	return hacks
}

// Hacks generates all domain hacks for a word, deduplicated and sorted by
// domain name.
func Hacks(word string, tlds []string) []Candidate {
	seen := make(map[string]bool)
	var combined []Candidate
	for _, hack := range append(SuffixHacks(word, tlds), InteriorHacks(word, tlds)...) {
		if seen[hack.Domain] {
			continue
		}
		seen[hack.Domain] = true
		combined = append(combined, hack)
	}
	sort.Slice(combined, func(i, j int) bool {
		return combined[i].Domain < combined[j].Domain
	})
	return combined
}

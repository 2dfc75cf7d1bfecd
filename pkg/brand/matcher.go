// Package brand implements the brand-extraction path of the codeframe
// pipeline: entity matching over answer texts, external validation and the
// weighted confidence used to decide auto-approval.
package brand

import (
	"regexp"
	"sort"
	"strings"
)

var (
	rePunct      = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	reWhitespace = regexp.MustCompile(`\s+`)
	reWord       = regexp.MustCompile(`\p{Lu}[\p{L}\p{N}]+`)
)

// Corporate suffixes stripped during normalization so "Acme Inc." and
// "acme" collapse to the same key.
var suffixes = map[string]bool{
	"inc": true, "co": true, "corp": true, "ltd": true, "llc": true, "gmbh": true,
}

// contextWords near a mention indicate the respondent talks about the brand
// as a brand, which earns the context bonus.
var contextWords = map[string]bool{
	"brand": true, "buy": true, "bought": true, "use": true, "love": true,
	"prefer": true, "recommend": true, "switched": true, "loyal": true,
}

// Mention is one extracted brand candidate aggregated over a batch.
type Mention struct {
	Canonical  string // normalized display name
	Raw        string // first surface form seen
	Count      int
	KnownMatch bool
	ContextHit bool
}

// Matcher extracts brand mentions from free-text answers against a known
// brand list, plus repeated capitalized tokens as discovery candidates.
type Matcher struct {
	known map[string]string // normalized -> canonical display name
	// MinDiscoveryCount is how often an unknown capitalized token must
	// appear before it becomes a candidate.
	MinDiscoveryCount int
}

func NewMatcher(knownBrands []string) *Matcher {
	m := &Matcher{
		known:             make(map[string]string, len(knownBrands)),
		MinDiscoveryCount: 2,
	}
	for _, b := range knownBrands {
		m.known[Normalize(b)] = strings.TrimSpace(b)
	}
	return m
}

// Normalize lowercases, strips punctuation and corporate suffixes, and
// collapses whitespace.
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = rePunct.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	words := strings.Fields(s)
	for len(words) > 1 && suffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// Extract scans the texts and returns mentions sorted by count descending,
// canonical name ascending for equal counts. The order is deterministic.
func (m *Matcher) Extract(texts []string) []Mention {
	agg := make(map[string]*Mention)

	for _, text := range texts {
		lower := strings.ToLower(text)
		hasContext := containsContextWord(lower)

		// Known-brand pass: substring match on the normalized text.
		normText := Normalize(text)
		for key, canonical := range m.known {
			if !containsPhrase(normText, key) {
				continue
			}
			mention := agg[key]
			if mention == nil {
				mention = &Mention{Canonical: canonical, Raw: canonical, KnownMatch: true}
				agg[key] = mention
			}
			mention.Count++
			mention.ContextHit = mention.ContextHit || hasContext
		}

		// Discovery pass: capitalized tokens not already claimed.
		for _, word := range reWord.FindAllString(text, -1) {
			key := Normalize(word)
			if key == "" || m.known[key] != "" {
				continue
			}
			mention := agg[key]
			if mention == nil {
				mention = &Mention{Canonical: titleCase(key), Raw: word}
				agg[key] = mention
			}
			mention.Count++
			mention.ContextHit = mention.ContextHit || hasContext
		}
	}

	var out []Mention
	for _, mention := range agg {
		if !mention.KnownMatch && mention.Count < m.MinDiscoveryCount {
			continue
		}
		out = append(out, *mention)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Canonical < out[j].Canonical
	})
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func containsPhrase(text, phrase string) bool {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		beforeOK := idx == 0 || text[idx-1] == ' '
		end := idx + len(phrase)
		afterOK := end == len(text) || text[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func containsContextWord(lowerText string) bool {
	for _, word := range strings.Fields(rePunct.ReplaceAllString(lowerText, " ")) {
		if contextWords[word] {
			return true
		}
	}
	return false
}

package exemplar

import (
	"github.com/fyrsmithlabs/voicaj/internal/lexicon"
)

// overlapThreshold is the share of the input's distinct words an exemplar
// must contain to count as similar.
const overlapThreshold = 0.8

// domainKeywords restrict the last-resort match to exemplars about the same
// subject as the input.
var domainKeywords = []lexicon.Set{
	lexicon.New("report*"),
	lexicon.New("manager*"),
	lexicon.New("presentation*"),
	lexicon.New("code", "coding"),
	lexicon.New("programming"),
	lexicon.New("work"),
	lexicon.New("universit*"),
	lexicon.New("study*", "studies", "studying"),
	lexicon.New("task*"),
	lexicon.New("urgen*"),
	lexicon.New("writing", "write"),
}

// Match kinds reported by Lookup.
const (
	MatchExact   = "exact"
	MatchOverlap = "overlap"
	MatchKeyword = "keyword"
	MatchNone    = "none"
)

// FindSimilar returns at most one exemplar similar to text. Matching runs in
// three passes: exact case-insensitive input, word overlap, then a shared
// domain keyword. Within a pass the newest exemplar wins.
func (s *Store) FindSimilar(text string) []Exemplar {
	ex, kind := s.Lookup(text)
	if kind == MatchNone {
		return nil
	}
	return []Exemplar{ex}
}

// Lookup is FindSimilar reporting which pass matched.
func (s *Store) Lookup(text string) (Exemplar, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ex, kind := lookup(s.entries, text)
	LookupsTotal.WithLabelValues(kind).Inc()
	if kind == MatchNone {
		return Exemplar{}, kind
	}
	return ex.Clone(), kind
}

func lookup(entries []Exemplar, text string) (Exemplar, string) {
	input := lexicon.Normalize(text)
	if input == "" || len(entries) == 0 {
		return Exemplar{}, MatchNone
	}

	for i := len(entries) - 1; i >= 0; i-- {
		if lexicon.Normalize(entries[i].Input) == input {
			return entries[i], MatchExact
		}
	}

	inputWords := wordSet(input)
	if len(inputWords) > 0 {
		for i := len(entries) - 1; i >= 0; i-- {
			if overlap(inputWords, wordSet(lexicon.Normalize(entries[i].Input))) >= overlapThreshold {
				return entries[i], MatchOverlap
			}
		}
	}

	inputDomains := domainsOf(input)
	if len(inputDomains) == 0 {
		return Exemplar{}, MatchNone
	}
	for i := len(entries) - 1; i >= 0; i-- {
		for d := range domainsOf(lexicon.Normalize(entries[i].Input)) {
			if inputDomains[d] {
				return entries[i], MatchKeyword
			}
		}
	}
	return Exemplar{}, MatchNone
}

// overlap is |input ∩ other| / |input|.
func overlap(input, other map[string]bool) float64 {
	common := 0
	for w := range input {
		if other[w] {
			common++
		}
	}
	return float64(common) / float64(len(input))
}

func wordSet(text string) map[string]bool {
	ws := lexicon.Words(text)
	set := make(map[string]bool, len(ws))
	for _, w := range ws {
		set[w] = true
	}
	return set
}

func domainsOf(text string) map[int]bool {
	found := make(map[int]bool)
	for i, d := range domainKeywords {
		if d.Any(text) {
			found[i] = true
		}
	}
	return found
}

package keyword

import (
	"sort"
	"strings"
	"sync"
)

// Suggestion is a candidate replacement for a misspelled term.
type Suggestion struct {
	Term      string
	Distance  int
	Frequency int
	Score     float64
}

// SpellCheckResult holds the outcome of spell checking a whole query.
type SpellCheckResult struct {
	OriginalQuery   string
	CorrectedQuery  string
	Suggestions     []Suggestion
	HasCorrections  bool
	MisspelledTerms []string
}

// SpellChecker suggests corrections for query terms missing from the index
// vocabulary.
type SpellChecker struct {
	dictionary     TermDictionary
	maxDistance    int
	maxSuggestions int

	termsCache []string
	termSet    map[string]struct{}
	cacheMu    sync.RWMutex
	cacheValid bool
}

// SpellCheckerOption configures a SpellChecker.
type SpellCheckerOption func(*SpellChecker)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if d > 0 {
			s.maxDistance = d
		}
	}
}

// WithMaxSuggestions sets the maximum number of suggestions per term.
func WithMaxSuggestions(n int) SpellCheckerOption {
	return func(s *SpellChecker) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// NewSpellChecker creates a SpellChecker backed by the given dictionary.
func NewSpellChecker(dict TermDictionary, opts ...SpellCheckerOption) *SpellChecker {
	s := &SpellChecker{
		dictionary:     dict,
		maxDistance:    2,
		maxSuggestions: 5,
		termSet:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshCache reloads the vocabulary from the dictionary. Call after the
// index contents change.
func (s *SpellChecker) RefreshCache() error {
	terms, err := s.dictionary.GetAllTerms()
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.termsCache = terms
	s.termSet = make(map[string]struct{}, len(terms))
	for _, t := range terms {
		s.termSet[strings.ToLower(t)] = struct{}{}
	}
	s.cacheValid = true

	return nil
}

func (s *SpellChecker) ensureCache() error {
	s.cacheMu.RLock()
	valid := s.cacheValid
	s.cacheMu.RUnlock()
	if valid {
		return nil
	}
	return s.RefreshCache()
}

// Check looks up every query term and proposes corrections for the ones
// missing from the vocabulary.
func (s *SpellChecker) Check(query string) (*SpellCheckResult, error) {
	if err := s.ensureCache(); err != nil {
		return nil, err
	}

	terms := tokenizeQuery(query)
	result := &SpellCheckResult{
		OriginalQuery: query,
	}

	correctedTerms := make([]string, 0, len(terms))
	for _, term := range terms {
		s.cacheMu.RLock()
		_, exists := s.termSet[term]
		s.cacheMu.RUnlock()

		if exists {
			correctedTerms = append(correctedTerms, term)
			continue
		}

		suggestions := s.Suggest(term)
		if len(suggestions) == 0 {
			correctedTerms = append(correctedTerms, term)
			continue
		}
		result.HasCorrections = true
		result.MisspelledTerms = append(result.MisspelledTerms, term)
		result.Suggestions = append(result.Suggestions, suggestions...)
		correctedTerms = append(correctedTerms, suggestions[0].Term)
	}

	result.CorrectedQuery = strings.Join(correctedTerms, " ")
	return result, nil
}

// Suggest returns vocabulary terms within maxDistance of term, best first.
func (s *SpellChecker) Suggest(term string) []Suggestion {
	if err := s.ensureCache(); err != nil {
		return nil
	}

	termLower := strings.ToLower(term)

	s.cacheMu.RLock()
	terms := s.termsCache
	s.cacheMu.RUnlock()

	var suggestions []Suggestion
	for _, dictTerm := range terms {
		dictTermLower := strings.ToLower(dictTerm)
		if dictTermLower == termLower {
			continue
		}

		// Length difference bounds the edit distance from below.
		lenDiff := len(dictTermLower) - len(termLower)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > s.maxDistance {
			continue
		}

		distance := LevenshteinDistance(termLower, dictTermLower)
		if distance > s.maxDistance {
			continue
		}

		freq, err := s.dictionary.GetTermFrequency(dictTerm)
		if err != nil || freq < 1 {
			continue
		}

		suggestions = append(suggestions, Suggestion{
			Term:      dictTerm,
			Distance:  distance,
			Frequency: freq,
			Score:     (1.0 / float64(distance+1)) * float64(freq),
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > s.maxSuggestions {
		suggestions = suggestions[:s.maxSuggestions]
	}
	return suggestions
}

// GetTopSuggestions returns up to n corrected query strings for a query with
// misspelled terms, or nil when everything checked out.
func (s *SpellChecker) GetTopSuggestions(query string, n int) []string {
	result, err := s.Check(query)
	if err != nil || !result.HasCorrections {
		return nil
	}

	seen := map[string]struct{}{strings.ToLower(query): {}}
	suggestions := make([]string, 0, n)
	if _, dup := seen[result.CorrectedQuery]; !dup {
		suggestions = append(suggestions, result.CorrectedQuery)
		seen[result.CorrectedQuery] = struct{}{}
	}

	// Single-term queries can offer the runner-up corrections too.
	terms := tokenizeQuery(query)
	if len(terms) == 1 {
		for _, sug := range result.Suggestions {
			if len(suggestions) >= n {
				break
			}
			if _, dup := seen[sug.Term]; dup {
				continue
			}
			suggestions = append(suggestions, sug.Term)
			seen[sug.Term] = struct{}{}
		}
	}

	if len(suggestions) > n {
		suggestions = suggestions[:n]
	}
	return suggestions
}

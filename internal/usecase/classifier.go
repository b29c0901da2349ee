package usecase

import (
	"errors"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/9endu/Dealicious/internal/domain"
	"github.com/9endu/Dealicious/internal/infrastructure/corpus"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Token weights for similarity scoring
const (
	weightKeyword     = 3.0 // Category keywords (phone, shirt, rice)
	weightDefault     = 1.0 // Everything else
	fuzzyWeightFactor = 0.8 // Fuzzy matches get 80% of normal weight

	defaultMinSimilarity     = 45.0
	defaultFuzzyEditDistance = 1
)

// categoryKeywords is one row of the keyword table; rows are checked in order
type categoryKeywords struct {
	category domain.Category
	keywords []string
}

var defaultCategoryTable = []categoryKeywords{
	{domain.CategoryElectronics, []string{"phone", "laptop", "tv", "camera", "headphone", "speaker"}},
	{domain.CategoryFashion, []string{"shirt", "pant", "dress", "shoe", "watch", "bag"}},
	{domain.CategoryGrocery, []string{"rice", "oil", "milk", "egg", "fruit", "vegetable"}},
	{domain.CategoryHome, []string{"furniture", "kitchen", "decor", "light", "bed", "sofa"}},
	{domain.CategoryBooks, []string{"book", "novel", "textbook", "stationery"}},
}

// keywordTerms is every keyword in the table, used to weight similarity tokens
var keywordTerms = func() map[string]bool {
	terms := make(map[string]bool)
	for _, row := range defaultCategoryTable {
		for _, kw := range row.keywords {
			terms[kw] = true
		}
	}
	return terms
}()

// classifierStopWords includes basic English stop words plus offer noise
var classifierStopWords = map[string]bool{
	// Basic English stop words
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"it": true, "as": true, "be": true, "now": true, "get": true,
	// Offer noise
	"buy": true, "price": true, "offer": true, "discount": true, "sale": true,
	"deal": true, "off": true, "free": true, "flat": true, "rs": true, "inr": true,
	"limited": true, "time": true, "only": true, "combo": true, "flash": true,
	// Packaging / quantity
	"pack": true, "count": true, "pcs": true, "piece": true, "pieces": true,
	"set": true, "kg": true, "gm": true, "ml": true, "ltr": true,
}

// KeywordClassifier categorizes text by case-insensitive keyword containment.
// The first matching category in table order wins.
type KeywordClassifier struct {
	table []categoryKeywords
}

// NewKeywordClassifier creates the built-in keyword classifier
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{table: defaultCategoryTable}
}

// Categorize returns the first category whose keyword occurs in text, else other
func (c *KeywordClassifier) Categorize(text string) domain.Category {
	lower := strings.ToLower(text)
	for _, row := range c.table {
		for _, kw := range row.keywords {
			if strings.Contains(lower, kw) {
				return row.category
			}
		}
	}
	return domain.CategoryOther
}

// SimilarityConfig holds configuration for the similarity classifier
type SimilarityConfig struct {
	MinSimilarity     float64
	FuzzyEditDistance int
	EnableDebug       bool
}

// example is one tokenized corpus phrase
type example struct {
	category domain.Category
	phrase   string
	tokens   []string
}

// SimilarityClassifier matches text against example phrases per category using
// weighted token coverage with fuzzy matching. Below the similarity threshold it
// defers to a fallback classifier.
type SimilarityClassifier struct {
	examples          []example
	fallback          domain.Classifier
	minSimilarity     float64
	fuzzyEditDistance int
	enableDebug       bool
}

// NewSimilarityClassifier builds a classifier from a loaded corpus
func NewSimilarityClassifier(c *corpus.Corpus, fallback domain.Classifier, cfg SimilarityConfig) (*SimilarityClassifier, error) {
	if c == nil {
		return nil, domain.ErrCorpusUnavailable
	}
	if fallback == nil {
		fallback = NewKeywordClassifier()
	}
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = defaultMinSimilarity
	}
	if cfg.FuzzyEditDistance <= 0 {
		cfg.FuzzyEditDistance = defaultFuzzyEditDistance
	}

	var examples []example
	for _, category := range c.CategoryNames() {
		for _, phrase := range c.Categories[category] {
			if tokens := tokenize(phrase); len(tokens) > 0 {
				examples = append(examples, example{category: category, phrase: phrase, tokens: tokens})
			}
		}
	}
	if len(examples) == 0 {
		return nil, errors.Join(domain.ErrCorpusUnavailable, errors.New("corpus has no usable phrases"))
	}

	return &SimilarityClassifier{
		examples:          examples,
		fallback:          fallback,
		minSimilarity:     cfg.MinSimilarity,
		fuzzyEditDistance: cfg.FuzzyEditDistance,
		enableDebug:       cfg.EnableDebug,
	}, nil
}

// Categorize returns the category of the most similar example, or the fallback's
// answer when no example is similar enough
func (s *SimilarityClassifier) Categorize(text string) domain.Category {
	category, score, phrase := s.Best(text)
	if s.enableDebug {
		log.Debug().Str("text", text).Str("category", string(category)).
			Float64("score", score).Str("example", phrase).Msg("Similarity classification")
	}
	if score < s.minSimilarity {
		return s.fallback.Categorize(text)
	}
	return category
}

// Best returns the best-scoring category, its score (0-100) and the matched example
func (s *SimilarityClassifier) Best(text string) (domain.Category, float64, string) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return domain.CategoryOther, 0, ""
	}

	best := domain.CategoryOther
	highest := -1.0
	var phrase string
	for _, ex := range s.examples {
		if score := s.score(tokens, ex.tokens); score > highest {
			highest, best, phrase = score, ex.category, ex.phrase
		}
	}
	return best, highest, phrase
}

// score computes similarity between text tokens and one example. Uses a weighted
// combination of:
//   - Example coverage: what % of the example tokens appear in the text (most important)
//   - Text coverage: weighted % of the text tokens found in the example
//   - Jaccard overlap
func (s *SimilarityClassifier) score(textTokens, exampleTokens []string) float64 {
	var matchedWeight, totalWeight float64
	matchedExample := make(map[string]bool)
	for _, t := range textTokens {
		w := tokenWeight(t)
		totalWeight += w
		for _, e := range exampleTokens {
			if t == e {
				matchedWeight += w
				matchedExample[e] = true
				break
			}
			if fuzzyTokenMatch(t, e, s.fuzzyEditDistance) {
				matchedWeight += w * fuzzyWeightFactor
				matchedExample[e] = true
				break
			}
		}
	}
	if totalWeight == 0 {
		return 0
	}

	textCoverage := matchedWeight / totalWeight
	exampleCoverage := float64(len(matchedExample)) / float64(len(exampleTokens))
	exact := countIntersection(textTokens, exampleTokens)
	jaccard := float64(exact) / float64(findUnion(textTokens, exampleTokens))

	return (exampleCoverage*0.60 + textCoverage*0.20 + jaccard*0.20) * 100
}

func tokenWeight(token string) float64 {
	if keywordTerms[token] || keywordTerms[strings.TrimSuffix(token, "s")] {
		return weightKeyword
	}
	return weightDefault
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, offer noise, and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(NormalizeText(s)), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 {
			continue
		}
		if classifierStopWords[word] {
			continue
		}
		if isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens >= 4 chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// countIntersection returns the number of distinct tokens present in both sets
func countIntersection(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	count := 0
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			count++
			seen[t] = true
		}
	}

	return count
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}

// classifierSwitch serves the keyword classifier until a better one is installed.
// Reads are lock-free.
type classifierSwitch struct {
	current atomic.Pointer[classifierBox]
}

type classifierBox struct {
	classifier domain.Classifier
	name       string
}

func newClassifierSwitch(initial domain.Classifier, name string) *classifierSwitch {
	s := &classifierSwitch{}
	s.set(initial, name)
	return s
}

func (s *classifierSwitch) set(c domain.Classifier, name string) {
	s.current.Store(&classifierBox{classifier: c, name: name})
}

// Name reports which classifier is active
func (s *classifierSwitch) Name() string {
	return s.current.Load().name
}

// Categorize delegates to the active classifier
func (s *classifierSwitch) Categorize(text string) domain.Category {
	return s.current.Load().classifier.Categorize(text)
}

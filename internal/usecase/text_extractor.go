package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Package-level compiled regex patterns for performance
var (
	priceCandidateRegex = regexp.MustCompile(`\b\d+(?:,\d+)*(?:\.\d+)?\b`)
	nonPriceCharsRegex  = regexp.MustCompile(`[^0-9.]`)
	sentenceSplitRegex  = regexp.MustCompile(`[.!?]+`)
)

const (
	maxTitleWords         = 7
	maxFallbackTitleWords = 5
	minTitleWordRunes     = 4 // words must be longer than 3 characters
	minSentenceTitleRunes = 11
	maxSentenceTitleRunes = 99
)

// titleStopWords are offer words that never make a useful title
var titleStopWords = map[string]bool{
	"buy": true, "price": true, "offer": true, "discount": true,
	"sale": true, "rs": true, "₹": true,
}

// knownBrands is checked in order; the first brand found wins
var knownBrands = []string{"samsung", "apple", "nike", "adidas", "puma", "mi", "oneplus"}

// TextFeatures is what the text heuristics recovered from one piece of text
type TextFeatures struct {
	Prices []float64
	Price  float64 // largest candidate, 0 when none
	Title  string
	Brand  string
}

// TextExtractor pulls price candidates, a candidate title and a known brand out of free text
type TextExtractor struct {
	brands []brandMatcher
}

type brandMatcher struct {
	name    string
	pattern *regexp.Regexp
}

// NewTextExtractor creates a text extractor for the built-in brand list
func NewTextExtractor() *TextExtractor {
	return NewTextExtractorWithBrands(knownBrands)
}

// NewTextExtractorWithBrands creates a text extractor for a custom brand list
func NewTextExtractorWithBrands(brands []string) *TextExtractor {
	matchers := make([]brandMatcher, 0, len(brands))
	for _, b := range brands {
		b = strings.ToLower(strings.TrimSpace(b))
		if b == "" {
			continue
		}
		// Word boundaries keep short brands like "mi" from matching inside "limited"
		matchers = append(matchers, brandMatcher{
			name:    b,
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(b) + `\b`),
		})
	}
	return &TextExtractor{brands: matchers}
}

// Extract runs every text heuristic over text
func (e *TextExtractor) Extract(text string) TextFeatures {
	text = NormalizeText(text)
	prices := PriceCandidates(text)
	return TextFeatures{
		Prices: prices,
		Price:  maxPrice(prices),
		Title:  CandidateTitle(text),
		Brand:  e.Brand(text),
	}
}

// Brand returns the first known brand mentioned in text, or ""
func (e *TextExtractor) Brand(text string) string {
	for _, b := range e.brands {
		if b.pattern.MatchString(text) {
			return b.name
		}
	}
	return ""
}

// NormalizeText folds compatibility characters (full-width digits, ligatures,
// non-breaking spaces) and strips combining marks so OCR and pasted text match
// the ASCII heuristics.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

// PriceCandidates returns every positive, finite number found in text, in order
func PriceCandidates(text string) []float64 {
	matches := priceCandidateRegex.FindAllString(text, -1)
	prices := make([]float64, 0, len(matches))
	for _, m := range matches {
		cleaned := nonPriceCharsRegex.ReplaceAllString(m, "")
		v, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			continue
		}
		prices = append(prices, v)
	}
	return prices
}

// maxPrice favors the larger number: offer text usually repeats the discounted
// price next to the crossed-out MRP.
func maxPrice(prices []float64) float64 {
	best := 0.0
	for _, p := range prices {
		if p > best {
			best = p
		}
	}
	return best
}

// CandidateTitle joins the first seven words longer than three characters that are
// not offer stop words. Returns "" when no word qualifies.
func CandidateTitle(text string) string {
	return joinTitleWords(text, maxTitleWords, true)
}

// FallbackTitle derives a title from the first sentence when it is between 10 and
// 100 characters long, otherwise from the first five words longer than three characters.
func FallbackTitle(text string) string {
	text = NormalizeText(text)
	if first := strings.TrimSpace(sentenceSplitRegex.Split(text, 2)[0]); first != "" {
		if n := utf8.RuneCountInString(first); n >= minSentenceTitleRunes && n <= maxSentenceTitleRunes {
			return first
		}
	}
	return joinTitleWords(text, maxFallbackTitleWords, false)
}

func joinTitleWords(text string, limit int, skipStopWords bool) string {
	words := make([]string, 0, limit)
	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, isTitlePunct)
		if utf8.RuneCountInString(word) < minTitleWordRunes {
			continue
		}
		if skipStopWords && titleStopWords[strings.ToLower(word)] {
			continue
		}
		words = append(words, word)
		if len(words) == limit {
			break
		}
	}
	return strings.Join(words, " ")
}

// isTitlePunct trims separators left on words by "a, b; c" style text
func isTitlePunct(r rune) bool {
	switch r {
	case ',', ';', ':', '!', '?', '.', '"', '\'', '(', ')', '[', ']':
		return true
	}
	return false
}

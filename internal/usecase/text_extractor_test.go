package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriceCandidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []float64
	}{
		{"plain number", "price 2999", []float64{2999}},
		{"thousands separators", "now ₹1,29,999 only", []float64{129999}},
		{"decimal", "Rs. 499.50", []float64{499.5}},
		{"several in order", "was 3999 now 2999", []float64{3999, 2999}},
		{"zero dropped", "0 cost", []float64{}},
		{"no numbers", "no digits here", []float64{}},
		{"full-width digits after normalization", NormalizeText("₹２９９９"), []float64{2999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceCandidates(tt.text))
		})
	}
}

func TestCandidateTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"skips short words", "Sony WH-1000XM4 Headphones for you", "Sony WH-1000XM4 Headphones"},
		{"skips stop words", "Buy Samsung Galaxy sale price offer", "Samsung Galaxy"},
		{"trims punctuation", "Flat 50 off on Sony Headphones, flash sale now", "Flat Sony Headphones flash"},
		{"at most seven words", "alpha bravo charlie delta foxtrot golf hotel india juliet", "alpha bravo charlie delta foxtrot golf hotel"},
		{"nothing qualifies", "buy now at a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateTitle(tt.text))
		})
	}
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first sentence in range", "Great deal on a mixer grinder. Hurry up!", "Great deal on a mixer grinder"},
		{"short sentence uses words", "Deal! Amazing mixer grinder discount price", "Deal Amazing mixer grinder discount"},
		{"nothing usable", "ok. no", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackTitle(tt.text))
		})
	}
}

func TestTextExtractor_Brand(t *testing.T) {
	e := NewTextExtractor()

	tests := []struct {
		text string
		want string
	}{
		{"New Samsung Galaxy", "samsung"},
		{"APPLE iPhone 15", "apple"},
		{"Mi Band 8", "mi"},
		{"limited time only", ""},
		{"Nike and Adidas shoes", "nike"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Brand(tt.text))
		})
	}

	custom := NewTextExtractorWithBrands([]string{" Boat ", ""})
	assert.Equal(t, "boat", custom.Brand("boAt Rockerz 450"))
	assert.Equal(t, "", custom.Brand("Samsung Galaxy"))
}

func TestTextExtractor_Extract(t *testing.T) {
	f := NewTextExtractor().Extract("Samsung Galaxy M34 smartphone was ₹18,999 now ₹15,999")

	// digits glued to letters are not price candidates
	assert.Equal(t, []float64{18999, 15999}, f.Prices)
	assert.Equal(t, 18999.0, f.Price)
	assert.Equal(t, "Samsung Galaxy smartphone ₹18,999 ₹15,999", f.Title)
	assert.Equal(t, "samsung", f.Brand)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "", NormalizeText(""))
	assert.Equal(t, "Cafe", NormalizeText("Café"))
	assert.Equal(t, "fi 123", NormalizeText("ﬁ １２３"))
}

package ocr

import (
	"strings"

	"github.com/rotisserie/eris"
)

// recognizeRequest is the body posted to a remote OCR service
type recognizeRequest struct {
	Image    string `json:"image"` // base64
	Language string `json:"language"`
}

// recognizeResponse accepts either a flat text field or per-page/per-line blocks
type recognizeResponse struct {
	Text  string         `json:"text"`
	Pages []responsePage `json:"pages"`
	Error string         `json:"error,omitempty"`
}

type responsePage struct {
	Index int            `json:"index"`
	Text  string         `json:"text"`
	Lines []responseLine `json:"lines"`
}

type responseLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// MinLineConfidence drops recognized lines the service itself is unsure about.
// Lines without a reported confidence are kept.
const MinLineConfidence = 0.3

// mapToText flattens a remote OCR response into plain text.
// An empty result is returned as empty text, not as an error.
func mapToText(resp *recognizeResponse) (string, error) {
	if resp == nil {
		return "", eris.New("ocr: nil response")
	}
	if resp.Error != "" {
		return "", eris.Errorf("ocr: service error: %s", resp.Error)
	}
	if resp.Text != "" || len(resp.Pages) == 0 {
		return resp.Text, nil
	}

	pages := make([]string, 0, len(resp.Pages))
	for _, page := range resp.Pages {
		if text := pageText(page); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}

// pageText prefers the page's flat text and falls back to its confident lines
func pageText(page responsePage) string {
	if page.Text != "" {
		return page.Text
	}
	lines := make([]string, 0, len(page.Lines))
	for _, line := range page.Lines {
		if line.Text == "" || (line.Confidence > 0 && line.Confidence < MinLineConfidence) {
			continue
		}
		lines = append(lines, line.Text)
	}
	return strings.Join(lines, "\n")
}

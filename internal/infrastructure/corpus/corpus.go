// Package corpus loads the example phrases used to train the similarity classifier.
package corpus

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/9endu/Dealicious/internal/domain"
)

// Corpus maps each category to example product phrases.
type Corpus struct {
	Categories map[domain.Category][]string `yaml:"categories"`
}

// Load reads and validates a YAML corpus file.
func Load(path string) (*Corpus, error) {
	if path == "" {
		return nil, eris.Wrap(domain.ErrCorpusUnavailable, "corpus: no path configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "corpus: read %s", path)
	}
	return Parse(data)
}

// Parse decodes a YAML corpus, dropping blank phrases and empty categories.
func Parse(data []byte) (*Corpus, error) {
	var c Corpus
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "corpus: parse yaml")
	}

	cleaned := make(map[domain.Category][]string, len(c.Categories))
	for category, phrases := range c.Categories {
		category = domain.Category(strings.ToLower(strings.TrimSpace(string(category))))
		for _, phrase := range phrases {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				cleaned[category] = append(cleaned[category], phrase)
			}
		}
	}
	if len(cleaned) == 0 {
		return nil, eris.Wrap(domain.ErrCorpusUnavailable, "corpus: no categories with phrases")
	}
	c.Categories = cleaned
	return &c, nil
}

// CategoryNames returns the corpus categories in a stable order.
func (c *Corpus) CategoryNames() []domain.Category {
	names := make([]domain.Category, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Size returns the total number of phrases.
func (c *Corpus) Size() int {
	n := 0
	for _, phrases := range c.Categories {
		n += len(phrases)
	}
	return n
}

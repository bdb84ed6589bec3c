package analysis

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// KeywordExtractor pulls salient terms out of text with bleve's standard analyzer
// (unicode tokenizer, lowercase, English stop words).
type KeywordExtractor struct {
	mapping *mapping.IndexMappingImpl
}

// NewKeywordExtractor returns an extractor backed by a default bleve mapping.
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{mapping: bleve.NewIndexMapping()}
}

// Extract returns up to topK distinct terms in order of first appearance.
// Numbers and single characters are skipped.
func (k *KeywordExtractor) Extract(text string, topK int) ([]string, error) {
	keywords := []string{}
	if topK <= 0 {
		return keywords, nil
	}
	tokens, err := k.mapping.AnalyzeText(standard.Name, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("analyze text: %w", err)
	}
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		term := string(tok.Term)
		if !isKeyword(term) {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		keywords = append(keywords, term)
		if len(keywords) == topK {
			break
		}
	}
	return keywords, nil
}

func isKeyword(term string) bool {
	if utf8.RuneCountInString(term) < 2 {
		return false
	}
	for _, r := range term {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

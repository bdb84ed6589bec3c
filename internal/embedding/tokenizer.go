package embedding

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// BERT special token IDs.
const (
	tokenCLS     = 101
	tokenSEP     = 102
	vocabSize    = 30522
	firstWordTok = 1000
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// HashTokenizer lowercases text, splits on whitespace and punctuation, and maps each
// word to a stable hashed ID. It has no vocabulary file, so it only suits models
// fine-tuned on the same hashing or used for smoke tests.
type HashTokenizer struct{}

// Tokenize returns [CLS] words... [SEP] padded to maxTokens.
func (t HashTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens < 2 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = tokenCLS
	attentionMask[0] = 1

	pos := 1
	for _, word := range splitWords(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = wordID(word)
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos] = tokenSEP
	attentionMask[pos] = 1
	return inputIDs, attentionMask, tokenTypeIDs
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func wordID(word string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return firstWordTok + int64(h.Sum32()%(vocabSize-firstWordTok))
}

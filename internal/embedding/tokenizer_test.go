package embedding

import (
	"reflect"
	"testing"
)

func TestHashTokenizer_Tokenize(t *testing.T) {
	ids, attn, types := HashTokenizer{}.Tokenize("Hello, world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths = %d/%d/%d, want 10", len(ids), len(attn), len(types))
	}
	if ids[0] != tokenCLS || ids[3] != tokenSEP {
		t.Errorf("expected [CLS] w w [SEP], got %v", ids[:4])
	}
	wantMask := []int64{1, 1, 1, 1, 0, 0, 0, 0, 0, 0}
	if !reflect.DeepEqual(attn, wantMask) {
		t.Errorf("attention mask = %v, want %v", attn, wantMask)
	}
	again, _, _ := HashTokenizer{}.Tokenize("hello world", 10)
	if !reflect.DeepEqual(ids, again) {
		t.Error("tokenization should ignore case and punctuation")
	}
}

func TestHashTokenizer_Truncates(t *testing.T) {
	ids, attn, _ := HashTokenizer{}.Tokenize("a b c d e f g h", 4)
	if ids[0] != tokenCLS || ids[3] != tokenSEP {
		t.Errorf("truncated sequence must keep [CLS]/[SEP], got %v", ids)
	}
	for i, m := range attn {
		if m != 1 {
			t.Errorf("attn[%d] = %d, want 1", i, m)
		}
	}
}

func TestSplitWords(t *testing.T) {
	words := splitWords("  A,  b.  c  ")
	if !reflect.DeepEqual(words, []string{"a", "b", "c"}) {
		t.Errorf("splitWords = %v", words)
	}
	if len(splitWords("")) != 0 {
		t.Error("empty string should have no words")
	}
}

package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

// extractPlain returns content as a string, replacing invalid UTF-8 and stripping a BOM.
func extractPlain(content []byte) string {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "\ufffd")
	}
	return string(content)
}

// looksLikeText sniffs the first 8KiB for NUL bytes and invalid UTF-8.
func looksLikeText(content []byte) bool {
	head := content
	if len(head) > 8192 {
		head = head[:8192]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	// A multi-byte rune may be cut at the boundary.
	for i := 0; i < utf8.UTFMax && len(head) > 0; i++ {
		if utf8.Valid(head) {
			return true
		}
		if len(content) <= 8192 {
			return false
		}
		head = head[:len(head)-1]
	}
	return false
}

package curator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

// CanonicalKey is a fingerprint of normalized code used for deduplication.
type CanonicalKey string

// Short returns the first eight characters of the key.
func (k CanonicalKey) Short() string {
	if len(k) <= 8 {
		return string(k)
	}
	return string(k[:8])
}

// KeyOf returns the canonical key for a code body.
func KeyOf(code string) CanonicalKey {
	return CanonicalKey(fmt.Sprintf("%016x", xxhash.Sum64String(Canonicalize(code))))
}

// Canonicalize normalizes Python source for comparison: unicode is NFC
// normalized, '#' comments outside string literals are removed and every
// whitespace run collapses to a single space. Case is preserved.
func Canonicalize(code string) string {
	code = norm.NFC.String(code)
	stripped := stripComments(code)

	var b strings.Builder
	b.Grow(len(stripped))
	space := false
	for _, r := range stripped {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// stripComments removes '#' comments while leaving string literals,
// including triple-quoted ones, intact.
func stripComments(code string) string {
	var b strings.Builder
	b.Grow(len(code))

	var quote string
	for i := 0; i < len(code); i++ {
		c := code[i]
		if quote != "" {
			if c == '\\' && i+1 < len(code) {
				b.WriteByte(c)
				b.WriteByte(code[i+1])
				i++
				continue
			}
			if strings.HasPrefix(code[i:], quote) {
				b.WriteString(quote)
				i += len(quote) - 1
				quote = ""
				continue
			}
			if c == '\n' && len(quote) == 1 {
				// Unterminated single-line string.
				quote = ""
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '#':
			for i < len(code) && code[i] != '\n' {
				i++
			}
			if i < len(code) {
				b.WriteByte('\n')
			}
		case '"', '\'':
			q := string(c)
			if strings.HasPrefix(code[i:], q+q+q) {
				q = q + q + q
			}
			quote = q
			b.WriteString(q)
			i += len(q) - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

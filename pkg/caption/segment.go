package caption

import "strings"

// punctuation covers common half-width and full-width Latin/CJK marks.
const punctuation = `,.!?:;"'，。？！；：“”‘’【】（）()`

// IsPunctuation reports whether r is one of the recognized separators.
func IsPunctuation(r rune) bool {
	return strings.ContainsRune(punctuation, r)
}

// Segment splits text at every run of punctuation and returns the trimmed,
// non-empty pieces in order. The punctuation itself is dropped.
func Segment(text string) []string {
	parts := strings.FieldsFunc(text, IsPunctuation)

	fragments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fragments = append(fragments, p)
		}
	}
	return fragments
}

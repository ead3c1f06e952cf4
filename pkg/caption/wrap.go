package caption

import "strings"

// MeasureFunc returns the rendered width of s in pixels.
type MeasureFunc func(s string) int

// Wrap packs fragments into lines no wider than maxWidth.
//
// A fragment is placed whole whenever it fits after the current line
// (joined by one space). Otherwise the current line is closed and the
// fragment is packed rune by rune; its tail stays open so the next fragment
// can follow it on the same line.
//
// A single rune wider than maxWidth still gets a line of its own: runes are
// never split, so such a line overflows.
func Wrap(fragments []string, measure MeasureFunc, maxWidth int) []string {
	var (
		lines   []string
		current string
	)

	flush := func() {
		if line := strings.TrimSpace(current); line != "" {
			lines = append(lines, line)
		}
		current = ""
	}

	for _, frag := range fragments {
		candidate := frag
		if current != "" {
			candidate = current + " " + frag
		}
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}

		if current != "" {
			flush()
		}
		for _, r := range frag {
			next := current + string(r)
			if current == "" || measure(next) <= maxWidth {
				current = next
				continue
			}
			flush()
			current = string(r)
		}
	}
	flush()

	return lines
}

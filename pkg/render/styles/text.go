package styles

import "strings"

// FixedWidthText inserts a line break after every width characters of
// text. Removing the breaks reproduces the input exactly; nothing is
// dropped or duplicated. Empty text yields empty output. A width below
// one returns the text unchanged.
func FixedWidthText(text string, width int) string {
	runes := []rune(text)
	if width <= 0 || len(runes) <= width {
		return text
	}

	var lines []string
	for start := 0; start < len(runes); start += width {
		end := start + width
		if end > len(runes) {
			end = len(runes)
		}
		lines = append(lines, string(runes[start:end]))
	}
	return strings.Join(lines, "\n")
}

package report

import "strings"

// Normalize collapses every run of whitespace to a single space and trims the ends.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Shorten normalizes text and caps it at maxChars runes. Text over budget is
// cut to maxChars-3 runes plus "...", which may land mid-word.
func Shorten(text string, maxChars int) string {
	s := Normalize(text)
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	if maxChars <= 0 {
		return ""
	}
	if maxChars <= 3 {
		// No room for the ellipsis without breaking the budget.
		return string(runes[:maxChars])
	}
	return string(runes[:maxChars-3]) + "..."
}

// SplitBullets turns founder text into list items. Input with two or more
// non-empty lines yields one bullet per trimmed line; anything else collapses
// to a single normalized bullet, or none when blank.
func SplitBullets(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) >= 2 {
		return lines
	}
	one := Normalize(text)
	if one == "" {
		return []string{}
	}
	return []string{one}
}

func containsAny(haystack string, needles []string) (string, bool) {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return n, true
		}
	}
	return "", false
}

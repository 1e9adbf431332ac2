package certificates

import "strings"

// WrapText breaks text into lines no wider than maxWidth using greedy word
// fitting. Lines break only at single spaces, so joining the result with " "
// reproduces text exactly, including repeated spaces, tabs and newlines. A
// single word wider than maxWidth is placed on its own line rather than split.
// Blank text yields no lines.
func WrapText(text string, maxWidth float64, measure func(string) float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	words := strings.Split(text, " ")

	lines := make([]string, 0, 4)
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

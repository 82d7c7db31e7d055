package util

import (
	"strings"
)

// NormalizeTags lower-cases, trims, strips a leading '#', drops empties and
// duplicates, and keeps at most max entries in input order.
func NormalizeTags(raw []string, max int) []string {
	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.TrimPrefix(t, "#")
		t = strings.TrimSpace(t)
		if r := []rune(t); len(r) > MaxTagLength {
			t = strings.TrimSpace(string(r[:MaxTagLength]))
		}
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
		if max > 0 && len(tags) == max {
			break
		}
	}
	return tags
}

// SplitCSV splits a comma separated query value.
func SplitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

package util

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		max  int
		want []string
	}{
		{"lowercases and trims", []string{"  Go ", "SQL"}, 5, []string{"go", "sql"}},
		{"strips hash", []string{"#golang", "# docker"}, 5, []string{"golang", "docker"}},
		{"drops empties and duplicates", []string{"go", "", "GO", "  ", "#go"}, 5, []string{"go"}},
		{"caps at max", []string{"a", "b", "c", "d", "e", "f"}, 5, []string{"a", "b", "c", "d", "e"}},
		{"zero max keeps all", []string{"a", "b", "c", "d", "e", "f"}, 0, []string{"a", "b", "c", "d", "e", "f"}},
		{"nil input", nil, 5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.raw, tt.max))
		})
	}
}

func TestNormalizeTagsTruncatesLongTags(t *testing.T) {
	tags := NormalizeTags([]string{strings.Repeat("x", 80)}, 5)
	assert.Len(t, tags, 1)
	assert.Len(t, tags[0], MaxTagLength)
}

func TestNormalizeTagsDedupesAfterTruncation(t *testing.T) {
	tags := NormalizeTags([]string{strings.Repeat("a", 60), strings.Repeat("a", 55), "go"}, 5)
	assert.Equal(t, []string{strings.Repeat("a", MaxTagLength), "go"}, tags)
}

func TestNormalizeTagsKeepsRunesWhole(t *testing.T) {
	tags := NormalizeTags([]string{strings.Repeat("日", 60)}, 5)
	assert.Len(t, tags, 1)
	assert.True(t, utf8.ValidString(tags[0]))
	assert.Equal(t, MaxTagLength, utf8.RuneCountInString(tags[0]))
}

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, SplitCSV("  "))
	assert.Equal(t, []string{"go", "sql"}, SplitCSV("go,sql"))
}

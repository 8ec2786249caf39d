package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple word", "Castle", "castle"},
		{"spaces collapse to hyphen", "Old Town Hall", "old-town-hall"},
		{"punctuation collapses", "St. Andrew's Church", "st-andrew-s-church"},
		{"ukrainian letters survive", "Замок", "замок"},
		{"mixed case ukrainian", "Пам'ятник Шевченку", "пам-ятник-шевченку"},
		{"leading and trailing junk trimmed", "  --Museum--  ", "museum"},
		{"digits kept", "Fort 1848", "fort-1848"},
		{"empty input", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter than limit", "hello", 10, "hello"},
		{"exact limit", "hello", 5, "hello"},
		{"cut ascii", "hello world", 5, "hello"},
		{"multibyte kept whole", "héllo wörld", 7, "héllo w"},
		{"zero", "abc", 0, ""},
		{"empty", "", 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.in, tt.max))
		})
	}
}

func TestTruncateRunes_LongNote(t *testing.T) {
	text := strings.Repeat("ж", 1500)
	got := TruncateRunes(text, 1000)
	assert.Equal(t, 1000, len([]rune(got)))
}

func TestCleanTags(t *testing.T) {
	got := CleanTags([]string{" go ", "", "db", "go", "  ", "queue"})
	assert.Equal(t, []string{"go", "db", "queue"}, got)
	assert.NotNil(t, CleanTags(nil))
}

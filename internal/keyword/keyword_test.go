package keyword

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet_Matches(t *testing.T) {
	t.Parallel()

	morning := NewSet("morning", "mor", "am", "सुबह")

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact keyword", "Morning", true},
		{"keyword inside longer text", "early morning shift", true},
		{"abbreviation", "MOR", true},
		{"am suffix", "7 AM", true},
		{"devanagari token", "सुबह की पाली", true},
		{"whitespace padding", "  morning  ", true},
		{"no match", "Evening", false},
		{"empty text", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, morning.Matches(tt.text))
		})
	}
}

func TestSet_EmptySetNeverMatches(t *testing.T) {
	t.Parallel()

	empty := NewSet()
	assert.False(t, empty.Matches("morning"))

	blank := NewSet("", "   ")
	assert.False(t, blank.Matches("morning"))
}

func TestContains(t *testing.T) {
	t.Parallel()

	assert.True(t, Contains("Paid to BIPIN KUMAR on monday", "bipin kumar"))
	assert.True(t, Contains("  Bipin Kumar  ", "Bipin Kumar"))
	assert.False(t, Contains("Someone Else", "Bipin Kumar"))
	assert.False(t, Contains("anything", ""))
}

package meetingagent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"exact", "Budget Review", "Budget Review", true},
		{"case and whitespace insensitive", "Budget Review", "  budget review ", true},
		{"shared words despite reordering", "Q3 Budget", "Budget Review for Q3", true},
		{"containment one way", "Budget", "Budget Review", true},
		{"two shared words", "Marketing Budget Plan", "Budget Plan Review", true},
		{"one shared word", "Hiring Plan", "Plan Review", false},
		{"no shared words", "Hiring Plan", "Office Relocation", false},
		{"empty", "", "Budget", false},
		{"both empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TopicsMatch(tt.a, tt.b))
		})
	}
}
